package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
)

// Fires concurrent FinalizeOrder calls for one order against a running
// server and checks that exactly one of them created the sales record.
func main() {
	orderToken := flag.String("order", "", "public token of a non-cancelled order")
	totalRequests := flag.Int("n", 50, "number of concurrent finalize calls")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *orderToken == "" {
		log.Fatal().Msg("-order is required")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	operator, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    domain.RoleAdmin,
		"exp":     time.Now().Add(10 * time.Minute).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign operator token")
	}

	conn, err := grpc.NewClient(cfg.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to dial management service")
	}
	defer conn.Close()

	client := handler.NewManagementClient(conn)
	ctx := handler.WithBearer(context.Background(), operator)

	// Counters
	var createdCount, existsCount, failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := client.FinalizeOrder(ctx, &handler.FinalizeOrderRequest{Token: *orderToken})
			switch {
			case err != nil:
				failCount.Add(1)
				log.Debug().Err(err).Msg("finalize failed")
			case res.Outcome == "created":
				createdCount.Add(1)
			default:
				existsCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	created := createdCount.Load()
	exists := existsCount.Load()
	failed := failCount.Load()

	fmt.Println("========== FINALIZE STRESS RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Created:          %d\n", created)
	fmt.Printf("Already Exists:   %d\n", exists)
	fmt.Printf("Failed:           %d\n", failed)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=============================================")

	// A previously finalized order legitimately yields zero creations.
	switch {
	case failed > 0:
		fmt.Printf("FAIL: %d calls returned an error\n", failed)
	case created > 1:
		fmt.Printf("FAIL: expected at most 1 created record, got %d\n", created)
	default:
		fmt.Printf("PASS: %d created, %d already existed\n", created, exists)
	}

	sales, err := client.ListSales(ctx, &handler.ListSalesRequest{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list sales")
	}
	matching := 0
	for _, r := range sales.Records {
		if r.OrderToken == *orderToken {
			matching++
		}
	}
	if matching == 1 {
		fmt.Println("PASS: exactly one sales record for the order")
	} else {
		fmt.Printf("FAIL: expected 1 sales record for the order, got %d\n", matching)
	}
}
