package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keepLogger restores the global logger and level after a test changes them.
func keepLogger(t *testing.T) {
	t.Helper()
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestConfigureLogging_OffValues(t *testing.T) {
	for _, v := range []string{"", "0", "false"} {
		t.Run("value="+v, func(t *testing.T) {
			keepLogger(t)
			t.Setenv("SOLEKIT_DEBUG", v)
			var buf bytes.Buffer

			configureLogging(&buf)
			log.Error().Msg("should not appear")

			assert.Equal(t, zerolog.Disabled, zerolog.GlobalLevel())
			assert.Empty(t, buf.String())
		})
	}
}

func TestConfigureLogging_DebugUsesConsoleFormat(t *testing.T) {
	for _, v := range []string{"1", "true", "yes"} {
		t.Run("value="+v, func(t *testing.T) {
			keepLogger(t)
			t.Setenv("SOLEKIT_DEBUG", v)
			var buf bytes.Buffer

			configureLogging(&buf)
			log.Debug().Str("path", "/api/v1/cart").Msg("Access token rejected, refreshing")

			require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
			out := buf.String()
			assert.Contains(t, out, "DBG")
			assert.Contains(t, out, "Access token rejected, refreshing")
			assert.Contains(t, out, "path=/api/v1/cart")
			assert.NotContains(t, out, `"level"`)
		})
	}
}

func TestHandleInterrupt_ExitsWithStatusOne(t *testing.T) {
	stopChan := setupInterruptListener()
	exitCode := make(chan int, 1)
	var logged string

	go handleInterrupt(stopChan, func(msg string) { logged = msg }, func(code int) { exitCode <- code })
	stopChan <- os.Interrupt

	select {
	case code := <-exitCode:
		assert.Equal(t, 1, code)
		assert.Equal(t, "Interrupt signal received. Exiting...", logged)
	case <-time.After(time.Second):
		t.Fatal("exit was not called after interrupt")
	}
}
