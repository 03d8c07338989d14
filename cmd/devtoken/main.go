// cmd/devtoken signs a bearer token for local testing, using JWT_SECRET.
// Usage: devtoken <user-uuid> <email> <role>[,<role>...]
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"attendance/internal/config"
	"attendance/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: devtoken <user-uuid> <email> <role>[,<role>...]")
		os.Exit(2)
	}
	if _, err := uuid.Parse(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "invalid user uuid:", err)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: os.Args[1],
		Email:  os.Args[2],
		Roles:  strings.Split(os.Args[3], ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   os.Args[1],
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWTExpirationHours) * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
