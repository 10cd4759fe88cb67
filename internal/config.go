package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,required=true"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout          time.Duration `env:"PONG_TIMEOUT,default=60s"`

	MaxContentLength int `env:"MAX_CONTENT_LENGTH,required=true"`
	MaxImageBytes    int `env:"MAX_IMAGE_BYTES,required=true"`
	MaxNameLength    int `env:"MAX_NAME_LENGTH,default=64"`
	// MAX_FRAME_BYTES caps one inbound websocket frame. Zero derives it from the content limits.
	MaxFrameBytes int `env:"MAX_FRAME_BYTES"`

	// Moderation is off when neither CENSORED_WORDS nor CENSORED_DIR yields a word.
	CensoredWords   string `env:"CENSORED_WORDS"`
	CensoredDir     string `env:"CENSORED_DIR"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	// The archive is off when ARCHIVE_FILEPATH is empty.
	ArchiveFilepath   string `env:"ARCHIVE_FILEPATH"`
	ArchiveBufferSize int    `env:"ARCHIVE_BUFFER_SIZE,default=1024"`
	ArchiveLimit      *int   `env:"ARCHIVE_LIMIT"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// CharacterRune validates CHARACTER_REPLACEMENT.
func (c Config) CharacterRune() (rune, error) {
	str := c.CharReplacement
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// frameSlack covers the JSON envelope around a payload.
const frameSlack = 64 * 1024

// FrameLimit is the largest inbound frame a connection may send: a base64 image or a
// message of the configured size plus its envelope, unless MAX_FRAME_BYTES is set.
func (c Config) FrameLimit() int64 {
	if c.MaxFrameBytes > 0 {
		return int64(c.MaxFrameBytes)
	}
	image := int64(c.MaxImageBytes) * 4 / 3
	content := int64(c.MaxContentLength) * 4
	return max(image, content) + frameSlack
}
