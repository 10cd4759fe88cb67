package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_FrameLimit(t *testing.T) {
	req := require.New(t)

	// Given no explicit limit, the largest payload wins plus the envelope
	req.Equal(int64(1536+frameSlack), Config{MaxImageBytes: 1152, MaxContentLength: 100}.FrameLimit())
	req.Equal(int64(8000+frameSlack), Config{MaxImageBytes: 30, MaxContentLength: 2000}.FrameLimit())

	// Given an explicit limit, it is used as is
	req.Equal(int64(4096), Config{MaxFrameBytes: 4096, MaxImageBytes: 1 << 20}.FrameLimit())
}

func TestConfig_CharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := Config{CharReplacement: "#"}.CharacterRune()
	req.NoError(err)
	req.Equal('#', r)

	_, err = Config{CharReplacement: "##"}.CharacterRune()
	req.Error(err)
}
