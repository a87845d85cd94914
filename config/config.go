package config

import "time"

// Config collects every tunable of the server. Values are parsed from the
// environment with the BAKERY prefix (e.g. BAKERY_WEB_ADDRESS).
type Config struct {
	Web       Web
	DB        DB
	Cors      Cors
	Email     Email
	Razorpay  Razorpay
	CSRF      CSRF
	Auth      Auth
	Reconcile Reconcile
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:4000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:bakeshop"`
	DisableTLS bool   `conf:"default:true"`
	Migrate    bool   `conf:"default:true"`
}

type Cors struct {
	Origin string
}

type Email struct {
	Address  string
	Password string `conf:"mask"`
	Host     string
	Port     string `conf:"default:587"`
	From     string `conf:"default:orders@crumbline.example"`
}

// Razorpay holds the gateway credentials. Secret doubles as the HMAC key
// for payment signature verification.
type Razorpay struct {
	KeyID  string
	Secret string `conf:"mask"`
}

type CSRF struct {
	Secret string `conf:"mask"`
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
	LoginRPS        float64       `conf:"default:1"`
	LoginBurst      int           `conf:"default:5"`
	LoginExpiry     int           `conf:"default:15,help:idle minutes before a client's limiter is dropped"`
}

// Reconcile drives the stuck-order reconciliation worker.
type Reconcile struct {
	Interval time.Duration `conf:"default:1m"`
	Cutoff   time.Duration `conf:"default:2m"`
	Abandon  time.Duration `conf:"default:24h"`
}
