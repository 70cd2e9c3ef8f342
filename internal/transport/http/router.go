package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chiclink/api/internal/handlers"
	authmw "github.com/chiclink/api/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	JWTSecret      []byte
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ProfileHandler *handlers.ProfileHandler
	LikeHandler    *handlers.LikeHandler
	MessageHandler *handlers.MessageHandler
	SearchHandler  *handlers.SearchHandler
	UploadDir      string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/uploads", d.UploadDir)

	v1 := e.Group("/api/v1")

	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/refresh-token", d.AuthHandler.RefreshToken)

	secured := v1.Group("", authmw.RequireLogin(d.JWTSecret))

	secured.POST("/change-password", d.AuthHandler.ChangePassword)

	secured.GET("/users", d.UserHandler.GetUsers)
	secured.GET("/users/:id", d.UserHandler.GetUser)
	secured.PUT("/users/:id", d.UserHandler.UpdateUser)
	secured.DELETE("/users/:id", d.UserHandler.DeleteUser)

	secured.GET("/profiles/search", d.SearchHandler.Search)
	secured.GET("/profiles/by-profile-id/:profileId", d.ProfileHandler.GetProfileByProfileID)
	secured.GET("/profiles/by-user-id/:userId", d.ProfileHandler.GetProfileByUserID)
	secured.POST("/profiles/create-profile-for-user/:userId", d.ProfileHandler.CreateProfileForUser)
	secured.PUT("/profiles/update-profile/:profileId", d.ProfileHandler.UpdateProfile)
	secured.PUT("/profiles/update-profile-photos/:profileId", d.ProfileHandler.UpdateProfilePhotos)

	secured.POST("/likes", d.LikeHandler.AddLike)
	secured.GET("/likes/:userId", d.LikeHandler.GetUserLikes)
	secured.DELETE("/likes/:senderId/:receiverId", d.LikeHandler.DeleteLike)

	secured.POST("/messages", d.MessageHandler.SendMessage)
	secured.GET("/messages/:userId/sent", d.MessageHandler.GetSentMessages)
	secured.GET("/messages/:userId/received", d.MessageHandler.GetReceivedMessages)
}
