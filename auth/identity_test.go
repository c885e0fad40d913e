package auth

import (
	"testing"
)

func TestNormalizeARN(t *testing.T) {
	tests := []struct {
		name    string
		arn     string
		want    string
		wantErr bool
	}{
		{
			name: "IAM user",
			arn:  "arn:aws:iam::123456789012:user/jdoe",
			want: "jdoe",
		},
		{
			name: "assumed role session",
			arn:  "arn:aws:sts::123456789012:assumed-role/AWSReservedSSO_PowerUserAccess_abc123/jdoe@example.com",
			want: "jdoe",
		},
		{
			name: "root",
			arn:  "arn:aws:iam::123456789012:root",
			want: "root",
		},
		{
			name: "mixed case and punctuation",
			arn:  "arn:aws:iam::123456789012:user/John.Doe+test",
			want: "john-doe-test",
		},
		{
			name:    "empty",
			arn:     "",
			wantErr: true,
		},
		{
			name:    "too few fields",
			arn:     "arn:aws:iam",
			wantErr: true,
		},
		{
			name:    "empty resource",
			arn:     "arn:aws:iam::123456789012:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeARN(tt.arn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("normalizeARN(%q) = %q, want error", tt.arn, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeARN(%q) error: %v", tt.arn, err)
			}
			if got != tt.want {
				t.Errorf("normalizeARN(%q) = %q, want %q", tt.arn, got, tt.want)
			}
		})
	}
}
