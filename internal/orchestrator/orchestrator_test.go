package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmitParseRejectsNonHTTPScheme(t *testing.T) {
	o := &Orchestrator{}
	_, err := o.AdmitParse(context.Background(), "ftp://example.com/list.m3u", "", "")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestAdmitParseRejectsUnparseableURL(t *testing.T) {
	o := &Orchestrator{}
	_, err := o.AdmitParse(context.Background(), "://bad", "", "")
	assert.ErrorIs(t, err, ErrInvalidURL)
}
