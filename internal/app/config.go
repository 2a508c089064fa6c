package app

import (
	"log/slog"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home   string        // vault directory, e.g. $HOME/.ratchetkit
	Logger *slog.Logger  // optional; defaults to slog.Default()
	Policy domain.Policy // zero fields fall back to the defaults
	KDF    *crypto.KDFParams
}
