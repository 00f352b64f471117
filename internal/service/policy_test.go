package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/model"
)

func TestCanDelete(t *testing.T) {
	post := &model.Post{ID: 1, UserID: 10}
	cases := []struct {
		name  string
		actor identity.Identity
		want  bool
	}{
		{"anonymous", identity.Anonymous, false},
		{"author", identity.Identity{UserID: 10}, true},
		{"other user", identity.Identity{UserID: 11}, false},
		{"admin", identity.Identity{UserID: 12, IsAdmin: true}, true},
		{"admin author", identity.Identity{UserID: 10, IsAdmin: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanDelete(tc.actor, post))
		})
	}
	assert.False(t, CanDelete(identity.Identity{UserID: 1, IsAdmin: true}, nil))
}
