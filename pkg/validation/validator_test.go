package validation_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/linkbio/pkg/validation"
)

type signup struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,pwd"`
	Name     string   `json:"name" binding:"required,profilename"`
	Tags     []string `json:"tags" binding:"omitempty,max=2"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req signup
	return c.ShouldBindJSON(&req)
}

func TestToDetails(t *testing.T) {
	validation.Init()

	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "missing fields use json names",
			body: `{}`,
			want: map[string]string{"email": "is required", "password": "is required", "name": "is required"},
		},
		{
			name: "aliases",
			body: `{"email":"nope","password":"123","name":"` + strings.Repeat("n", 101) + `","tags":["a","b","c"]}`,
			want: map[string]string{
				"email":    "must be a valid email",
				"password": "min length 6",
				"name":     "must be at most 100 characters long",
				"tags":     "must contain at most 2 items",
			},
		},
		{
			name: "malformed json",
			body: `{"email":`,
			want: map[string]string{"payload": "invalid payload"},
		},
		{
			name: "wrong type",
			body: `{"email":1}`,
			want: map[string]string{"payload": "invalid json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bind(t, tt.body)
			require.Error(t, err)
			assert.Equal(t, tt.want, validation.ToDetails(err))
		})
	}
}

func TestToDetails_NilAndUnknown(t *testing.T) {
	assert.Nil(t, validation.ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, validation.ToDetails(errors.New("x")))
}
