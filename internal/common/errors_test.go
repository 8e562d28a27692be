package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, KindOf(fmt.Errorf("dial: %w", context.DeadlineExceeded)))
	assert.Equal(t, KindNetworkUnreachable, KindOf(errors.New("dial tcp: connection refused")))
	assert.Equal(t, KindTimeout, KindOf(errors.New("i/o timeout")))

	wrapped := fmt.Errorf("refresh: %w", HTTPStatusError(503))
	assert.Equal(t, KindHTTPError, KindOf(wrapped))
	assert.Equal(t, "http_error(503)", HTTPStatusError(503).Error())
}

func TestTagKeepsExistingKind(t *testing.T) {
	orig := NewError(KindMalformedResponse, errors.New("bad json"))
	assert.Same(t, orig, Tag(orig))
	assert.Equal(t, KindNetworkUnreachable, KindOf(Tag(errors.New("no route to host"))))
	assert.Nil(t, Tag(nil))
}

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("Read: I/O Timeout", "timeout"))
	assert.False(t, HasAny("connection refused", "timeout", "deadline"))
}
