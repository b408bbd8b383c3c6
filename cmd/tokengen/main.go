package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

func main() {
	// Parse command line flags
	secret := flag.String("secret", "", "HMAC secret for signing the token (defaults to JWT_SECRET)")
	issuer := flag.String("issuer", "", "Issuer of the token")
	audience := flag.String("audience", "", "Audience of the token")
	accountID := flag.String("id", "", "Account ID, written to the id claim")
	role := flag.String("role", "user", "Role claim")
	deviceID := flag.String("device", "", "Device fingerprint claim (optional)")
	expiry := flag.Duration("expiry", 30*time.Minute, "Token expiry duration (e.g., 30m, 1h, 24h)")
	outputFormat := flag.String("format", "compact", "Output format: compact, full, or debug")
	flag.Parse()

	if *secret == "" {
		*secret = os.Getenv("JWT_SECRET")
	}
	if *secret == "" || *accountID == "" {
		fmt.Fprintln(os.Stderr, "Error: -secret (or JWT_SECRET) and -id are required")
		flag.Usage()
		os.Exit(1)
	}

	tokenAuth := jwtauth.New("HS256", []byte(*secret), nil)

	claims := map[string]interface{}{
		"id":   *accountID,
		"sub":  *accountID,
		"role": *role,
		"jti":  uuid.New().String(),
	}
	if *deviceID != "" {
		claims["deviceId"] = *deviceID
	}
	if *issuer != "" {
		claims["iss"] = *issuer
	}
	if *audience != "" {
		claims["aud"] = *audience
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, *expiry)
	expiryTime := time.Now().Add(*expiry)

	tok, tokenStr, err := tokenAuth.Encode(claims)
	if err != nil {
		slog.Error("Failed to generate token", "err", err)
		fmt.Fprintf(os.Stderr, "Error: Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "compact":
		fmt.Println(tokenStr)
	case "full":
		fmt.Printf("Token: %s\nExpires: %s\n", tokenStr, expiryTime.Format(time.RFC3339))
	case "debug":
		claimMap, err := tok.AsMap(context.Background())
		if err != nil {
			slog.Error("Failed to read claims from token", "err", err)
			fmt.Fprintf(os.Stderr, "Error: Failed to read claims from token: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("=== Token Information ===\n")
		fmt.Printf("Token: %s\n\n", tokenStr)
		fmt.Printf("=== Token Claims ===\n")
		claimsJSON, _ := json.MarshalIndent(claimMap, "", "  ")
		fmt.Printf("%s\n\n", claimsJSON)
		fmt.Printf("Expires: %s\n", expiryTime.Format(time.RFC3339))
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown output format: %s\n", *outputFormat)
		os.Exit(1)
	}
}
