package templates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/linkbio/pkg/mailer/templates"
)

func TestRender_Welcome(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	data := templates.NewWelcomeData("Alice", "a@x.io", "https://links.test/alice", templates.WithTime(at))

	subject, text, html, err := templates.Render(templates.Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to linkbio", subject)
	assert.Contains(t, text, "Hi Alice,")
	assert.Contains(t, text, "https://links.test/alice")
	assert.Contains(t, html, `href="https://links.test/alice"`)
	assert.Equal(t, "01 March 2026, 09:30", data["Time"])
}

func TestRender_AccountDeletedWithBrand(t *testing.T) {
	data := templates.Apply(
		templates.NewAccountDeletedData("", "a@x.io"),
		templates.WithBrand(templates.Brand{AppName: "Bio", CompanyName: "Acme", SupportURL: "https://help.test"}),
	)

	subject, text, html, err := templates.Render(templates.AccountDeleted, data)
	require.NoError(t, err)
	assert.Equal(t, "Your Bio account was deleted", subject)
	assert.Contains(t, text, "Hi there,")
	assert.Contains(t, text, "https://help.test")
	assert.Contains(t, html, "Acme")
}

func TestWithBrand_KeepsExplicitValues(t *testing.T) {
	data := templates.Apply(map[string]any{"AppName": "Custom"}, templates.WithBrand(templates.Brand{AppName: "Default", LogoURL: "logo.png"}))
	assert.Equal(t, "Custom", data["AppName"])
	assert.Equal(t, "logo.png", data["LogoURL"])
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := templates.Render("nope", map[string]any{})
	assert.Error(t, err)
}

func TestRender_EscapesHTML(t *testing.T) {
	data := templates.NewWelcomeData("<script>", "a@x.io", "https://links.test/x")
	_, text, html, err := templates.Render(templates.Welcome, data)
	require.NoError(t, err)
	assert.Contains(t, text, "<script>")
	assert.NotContains(t, html, "<script>")
}
