package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanKeywordListDefault(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, defaultScanKeywords, cfg.ScanKeywordList())
}

func TestScanKeywordListParsesOverride(t *testing.T) {
	cfg := &Config{ScanKeywords: " phonics worksheets , math centers ,, "}
	require.Equal(t, []string{"phonics worksheets", "math centers"}, cfg.ScanKeywordList())
}
