// Package main provides admin management utilities for iforum.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"iforum/internal/config"
	"iforum/internal/database"
	"iforum/internal/repository"
	"iforum/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin createsuperuser   - Create a superuser account")
		fmt.Println("  go run ./cmd/admin list-superusers   - List all superusers")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo)

	switch os.Args[1] {
	case "createsuperuser":
		createSuperuser(userService)

	case "list-superusers":
		listSuperusers(userRepo)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createSuperuser(userService *service.UserService) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	fmt.Print("Username (optional): ")
	username, _ := reader.ReadString('\n')
	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')

	user, err := userService.CreateSuperuser(context.Background(),
		strings.TrimSpace(email), strings.TrimSpace(password), strings.TrimSpace(username))
	if err != nil {
		fmt.Printf("Failed to create superuser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Superuser %s (ID: %d) created\n", user.Email, user.ID)
}

func listSuperusers(userRepo repository.UserRepository) {
	users, err := userRepo.ListSuperusers(context.Background())
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("No superusers found")
		return
	}

	fmt.Println("Superusers:")
	for _, u := range users {
		fmt.Printf("  ID: %d, Email: %s, Username: %s\n", u.ID, u.Email, u.Username)
	}
}
