package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bloxforge/app/models/user"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestCurrentUserWithoutMiddleware(t *testing.T) {
	c := testContext(t)

	// 中间件没跑时拿到空用户而不是 panic
	u := CurrentUser(c)
	if u == nil || u.ID != "" {
		t.Fatalf("user = %+v, want empty user", u)
	}
}

func TestCurrentUserFromContext(t *testing.T) {
	c := testContext(t)
	c.Set("current_user", &user.User{ID: "u-1", Nickname: "Builder"})

	if got := CurrentUser(c).ID; got != "u-1" {
		t.Fatalf("user id = %q, want u-1", got)
	}
}

func TestCurrentUserWrongType(t *testing.T) {
	c := testContext(t)
	c.Set("current_user", "not-a-user")

	if got := CurrentUser(c).ID; got != "" {
		t.Fatalf("user id = %q, want empty", got)
	}
}
