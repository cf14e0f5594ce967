package ledgerbook

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:    "date only format YYYY-MM-DD",
			input:   `"2025-08-30"`,
			want:    "2025-08-30",
			wantErr: false,
		},
		{
			name:    "RFC3339 format",
			input:   `"2025-08-30T15:04:05Z"`,
			want:    "2025-08-30",
			wantErr: false,
		},
		{
			name:    "datetime without timezone",
			input:   `"2025-08-30T15:04:05"`,
			want:    "2025-08-30",
			wantErr: false,
		},
		{
			name:    "null value",
			input:   `null`,
			want:    "",
			wantErr: false,
		},
		{
			name:    "empty string",
			input:   `""`,
			want:    "",
			wantErr: false,
		},
		{
			name:    "datetime with microseconds",
			input:   `"2025-08-30T15:04:05.123456"`,
			want:    "2025-08-30",
			wantErr: false,
		},
		{
			name:    "invalid format",
			input:   `"not-a-date"`,
			want:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)

			if (err != nil) != tt.wantErr {
				t.Errorf("Date.UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				got := d.String()
				if got != tt.want {
					t.Errorf("Date.UnmarshalJSON() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want string
	}{
		{
			name: "normal date",
			date: Date{Time: time.Date(2025, 8, 30, 15, 30, 0, 0, time.UTC)},
			want: `"2025-08-30"`,
		},
		{
			name: "zero date",
			date: Date{Time: time.Time{}},
			want: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.date)
			if err != nil {
				t.Errorf("Date.MarshalJSON() error = %v", err)
				return
			}
			if string(got) != tt.want {
				t.Errorf("Date.MarshalJSON() = %v, want %v", string(got), tt.want)
			}
		})
	}
}

func TestTransaction_DateParsing(t *testing.T) {
	jsonData := `{
		"id": 123,
		"date": "2025-08-30T00:00:00",
		"amount": 50.00,
		"type": "expense",
		"category_id": null
	}`

	var txn Transaction
	err := json.Unmarshal([]byte(jsonData), &txn)
	if err != nil {
		t.Fatalf("Failed to unmarshal transaction: %v", err)
	}

	if txn.Date.String() != "2025-08-30" {
		t.Errorf("Transaction date = %v, want 2025-08-30", txn.Date.String())
	}

	if txn.CategoryID != nil {
		t.Errorf("Transaction category_id should be nil for null value")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("ParseDate() = %v", d)
	}

	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Error("ParseDate() expected error for wrong layout")
	}
}

func TestNewDate_Truncates(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 5, 23, 59, 0, 0, time.FixedZone("IST", 19800)))
	if d.String() != "2024-03-05" {
		t.Errorf("NewDate() = %v, want 2024-03-05", d)
	}
	if formatDate(time.Time{}) != "" {
		t.Error("formatDate() of zero time should be empty")
	}
}

func TestTimestamp_NaiveDatetime(t *testing.T) {
	var ledger Ledger
	err := json.Unmarshal([]byte(`{"id":1,"name":"Home","created_at":"2024-05-01T10:20:30.123456","updated_at":null}`), &ledger)
	if err != nil {
		t.Fatalf("Failed to unmarshal ledger: %v", err)
	}
	if ledger.CreatedAt == nil || ledger.CreatedAt.Hour() != 10 || ledger.CreatedAt.Minute() != 20 {
		t.Errorf("CreatedAt = %v, want 10:20", ledger.CreatedAt)
	}
	if ledger.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v, want nil", ledger.UpdatedAt)
	}

	out, err := json.Marshal(Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Timestamp.MarshalJSON() error = %v", err)
	}
	if string(out) != `"2024-05-01T10:00:00Z"` {
		t.Errorf("Timestamp.MarshalJSON() = %s", out)
	}
}
