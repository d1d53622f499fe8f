package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler mounts a group of routes under Root.
type IHttpHandler interface {
	Root() string
	SetRoutes(group *gin.RouterGroup)
}
