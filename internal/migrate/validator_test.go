package migrate

import (
	"strings"
	"testing"
)

func TestValidateFile(t *testing.T) {
	valid := append([]byte("SQLite format 3\x00"), make([]byte, 64)...)

	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr string
	}{
		{
			name: "valid sqlite extension",
			file: "backup.sqlite",
			data: valid,
		},
		{
			name: "valid db extension",
			file: "money.db",
			data: valid,
		},
		{
			name: "extension check is case insensitive",
			file: "BACKUP.SQLITE",
			data: valid,
		},
		{
			name:    "wrong extension",
			file:    "backup.csv",
			data:    valid,
			wantErr: "invalid file format",
		},
		{
			name:    "too small",
			file:    "backup.sqlite",
			data:    []byte("SQLite"),
			wantErr: "too small",
		},
		{
			name:    "wrong signature",
			file:    "backup.sqlite",
			data:    append([]byte("PK\x03\x04 not sqlite"), make([]byte, 64)...),
			wantErr: "does not appear to be a valid SQLite database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file, tt.data)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateFile(%q) = %v, want nil", tt.file, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateFile(%q) = nil, want error containing %q", tt.file, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateFile(%q) = %v, want error containing %q", tt.file, err, tt.wantErr)
			}
		})
	}
}
