package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"pvcli/internal/config"
	"pvcli/internal/shared/testutil"
)

func TestHealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name       string
		reportsDir string
		want       string
	}{
		{name: "reports dir present", reportsDir: t.TempDir(), want: StatusOK},
		{name: "reports dir missing", reportsDir: filepath.Join(t.TempDir(), "absent"), want: StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.2.3", &config.Paths{ReportsDir: tt.reportsDir}, logger)
			status := hs.HealthCheck(context.Background())

			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Equal(t, tt.want, status.Checks["reports_dir"].Status)
			assert.Contains(t, status.Runtime, "go_version")
		})
	}
}
