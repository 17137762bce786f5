package systemctl

import (
	"strings"
	"testing"
)

func TestTailArgs(t *testing.T) {
	tests := []struct {
		name string
		opts TailOptions
		want string
	}{
		{
			name: "defaults",
			opts: TailOptions{Lines: 50},
			want: "--user-unit systemdtab-job.service -n 50 --no-pager",
		},
		{
			name: "follow",
			opts: TailOptions{Lines: 10, Follow: true},
			want: "--user-unit systemdtab-job.service -n 10 --no-pager -f",
		},
		{
			name: "priority",
			opts: TailOptions{Lines: 50, Priority: "warning"},
			want: "--user-unit systemdtab-job.service -n 50 --no-pager -p warning",
		},
		{
			name: "follow with priority",
			opts: TailOptions{Lines: 200, Follow: true, Priority: "err"},
			want: "--user-unit systemdtab-job.service -n 200 --no-pager -f -p err",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(TailArgs("systemdtab-job.service", tt.opts), " ")
			if got != tt.want {
				t.Errorf("TailArgs = %q, want %q", got, tt.want)
			}
		})
	}
}
