package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"time"

	"tickethub/src/boot"
	"tickethub/src/config"
	"tickethub/src/controllers"
	"tickethub/src/middlewares"
	"tickethub/src/types"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	apiPrefix string = "/api/v1"
)

var eventDateTimeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	if ok {
		today := time.Now()
		if today.After(datetime) {
			return false
		}
	}
	return true
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	if !field.IsValid() {
		return false
	}
	fieldValue, okField := field.Interface().(string)
	if !okField {
		ptr, okPtr := field.Interface().(*string)
		if !okPtr || ptr == nil {
			return true
		}
		fieldValue = *ptr
	}
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	if ok {
		if fielddatetime.After(datetime) {
			return false
		}
	}
	return true
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", eventDateTimeValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	eventHandlers(apiv1)
	return apiv1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	auth := apiv1.Group("/auth")
	auth.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, status, err := controllers.RegisterUser(&body)
			if err != nil {
				log.Printf("Error on RegisterUser: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"user": user})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			token, status, err := controllers.LoginUser(&body)
			if err != nil {
				log.Printf("Error on LoginUser: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"token": token})
		})
	return apiv1
}

func authorizedRoutes(g *gin.Engine) *gin.RouterGroup {
	authorized := g.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	orderHandlers(authorized)
	ticketHandlers(authorized)
	paymentHandlers(authorized)
	myOrderHandlers(authorized)
	authorized.PATCH("/me", func(ctx *gin.Context) {
		var body types.UpdateProfileRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, status, err := controllers.UpdateProfile(ctx.GetUint("id"), &body)
		if err != nil {
			ctx.JSON(status, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(status, gin.H{"user": user})
	})

	organizer := g.Group(apiPrefix)
	organizer.Use(middlewares.AuthMiddleware, middlewares.OrganizerOnly)
	organizerEventHandlers(organizer)
	checkinHandlers(organizer)
	refundHandlers(organizer)
	return authorized
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	publicRoutes(router)
	guestAuthRoutes(router)
	paymentWebhookRoute(router)
	stripeWebhookRoute(router)
	authorizedRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
