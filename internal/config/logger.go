package config

import (
	"log/slog"
	"os"
)

// NewLogger monta o logger do serviço conforme o ambiente. Produção sai
// JSON nível info; fora dela, texto nível debug com origem, que ajuda a
// acompanhar os ticks de captura.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: env != "production",
	}

	var handler slog.Handler
	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(slog.String("service", "presenca"))
}
