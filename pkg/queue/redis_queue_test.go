package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestPopIdle(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"redis nil", goredis.Nil, true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("brpop: %w", context.DeadlineExceeded), true},
		{"wrapped redis nil", fmt.Errorf("brpop: %w", goredis.Nil), true},
		{"real failure", errors.New("connection refused"), false},
		{"canceled", context.Canceled, false},
	}

	for _, tc := range cases {
		if got := popIdle(tc.err); got != tc.want {
			t.Errorf("%s: popIdle = %v, want %v", tc.name, got, tc.want)
		}
	}
}
