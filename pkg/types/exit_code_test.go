// SPDX-License-Identifier: MPL-2.0

package types

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  int
		want ExitCode
	}{
		{name: "success", raw: 0, want: ExitSuccess},
		{name: "pytest failures", raw: 1, want: ExitFailure},
		{name: "pytest usage error", raw: 4, want: 4},
		{name: "upper bound", raw: 255, want: 255},
		{name: "killed by signal", raw: -1, want: ExitFailure},
		{name: "wraps to zero", raw: 256, want: ExitFailure},
		{name: "keeps low byte", raw: 258, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Normalize(tt.raw)
			if got != tt.want {
				t.Errorf("Normalize(%d) = %d, want %d", tt.raw, got, tt.want)
			}
			if got.IsSuccess() != (tt.want == ExitSuccess) {
				t.Errorf("Normalize(%d).IsSuccess() = %v", tt.raw, got.IsSuccess())
			}
		})
	}
}

func TestExitCodeString(t *testing.T) {
	t.Parallel()

	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("String() = %q, want %q", got, "42")
	}
}
