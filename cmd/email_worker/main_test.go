package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/linkbio/pkg/mailer"
	mailtpl "github.com/oksasatya/linkbio/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject string
	err         error
}

func (s *recordingSender) Send(_ context.Context, to, subject, _, _ string) error {
	s.to, s.subject = to, subject
	return s.err
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle(t *testing.T) {
	brand := mailtpl.Brand{AppName: "linkbio"}
	welcome := mailer.EmailJob{
		To:       "a@x.io",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData("Alice", "a@x.io", "https://links.test/alice"),
	}

	t.Run("sends rendered template", func(t *testing.T) {
		s := &recordingSender{}
		requeue, err := handle(context.Background(), s, brand, jobBody(t, welcome))
		require.NoError(t, err)
		assert.False(t, requeue)
		assert.Equal(t, "a@x.io", s.to)
		assert.Equal(t, "Welcome to linkbio", s.subject)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		requeue, err := handle(context.Background(), &recordingSender{}, brand, []byte("{"))
		assert.Error(t, err)
		assert.False(t, requeue)
	})

	t.Run("empty job is dropped", func(t *testing.T) {
		requeue, err := handle(context.Background(), &recordingSender{}, brand, jobBody(t, mailer.EmailJob{To: "a@x.io"}))
		assert.ErrorIs(t, err, mailer.ErrEmptyJob)
		assert.False(t, requeue)
	})

	t.Run("send failure is requeued", func(t *testing.T) {
		s := &recordingSender{err: errors.New("mailgun 502")}
		requeue, err := handle(context.Background(), s, brand, jobBody(t, welcome))
		assert.Error(t, err)
		assert.True(t, requeue)
	})
}
