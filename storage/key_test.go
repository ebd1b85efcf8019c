package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		key      string
		safe     string
		expected string
	}{
		{"/foo/bar.tif", "", "foo/bar.tif"},
		{"foo//bar/../baz.zip", "", "foo/baz.zip"},
		{"/../../etc/passwd", "", "etc/passwd"},
		{"/foo/b{:}ar", "", "foo/b%7B%3A%7Dar"},
		{"/foo/b{:}ar", "{}", "foo/b{%3A}ar"},
		{"a b", "", "a%20b"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.key, NewSafeChars(tt.safe)), tt.key)
	}
}

func TestPathPrefix(t *testing.T) {
	assert.Equal(t, "/", PathPrefix(""))
	assert.Equal(t, "/", PathPrefix("/"))
	assert.Equal(t, "/foo/", PathPrefix("foo"))
	assert.Equal(t, "/foo/bar/", PathPrefix("/foo/bar/"))
}

func TestObservePut(t *testing.T) {
	ObservePut("KeyTestStorage", time.Now(), nil)
	ObservePut("KeyTestStorage", time.Now(), errors.New("fail"))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(PutHistogram), 2)
}
