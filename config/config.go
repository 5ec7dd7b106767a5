package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vhoang/cinema-booking/internal/util"
)

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string

	JWTSecret string

	SeatHoldDuration time.Duration
	ReaperInterval   time.Duration

	VNPay VNPayConfig

	FrontendURL string
}

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	Host       string
	ReturnURL  string
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	holdMinutes, err := envInt("SEAT_HOLD_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	reaperSeconds, err := envInt("REAPER_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		Addr:        util.GetEnv("ADDR", ":4000"),
		CacheURL:    os.Getenv("CACHE_URL"),
		MQURL:       os.Getenv("RABBIT_MQ_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SeatHoldDuration: time.Duration(holdMinutes) * time.Minute,
		ReaperInterval:   time.Duration(reaperSeconds) * time.Second,

		VNPay: VNPayConfig{
			TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
			HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
			Host:       util.GetEnv("VNPAY_HOST", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:  os.Getenv("VNPAY_RETURN_URL"),
		},

		FrontendURL: os.Getenv("FRONTEND_URL"),
	}, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}
