package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("dw/drinkwater-go-api: ")
	log.SetFlags(0)

	// .env is optional — production config comes from real env vars.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	h := &Handler{db: getDBPool()}
	defer h.db.Close()

	fmt.Println("Starting gin app...")

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	router.Run(":" + port)
}
