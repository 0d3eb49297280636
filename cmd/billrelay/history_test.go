package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/porticus-lab/billrelay/internal/tracker"
)

func TestFormatHistory(t *testing.T) {
	sent := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)
	records := []tracker.SendRecord{
		{
			Timestamp:   tracker.Timestamp(sent),
			Year:        2025,
			Month:       3,
			GasAmount:   "$45.10",
			TrashAmount: "$34.90",
			RentAmount:  "$1,000.00",
			TotalAmount: "$1,080.00",
			TenantEmail: "tenant@example.com",
		},
	}

	var buf bytes.Buffer
	formatHistory(&buf, records)

	out := buf.String()
	assert.Contains(t, out, "MONTH")
	assert.Contains(t, out, "2025-02-14 09:30:00")
	assert.Contains(t, out, "2025-03")
	assert.Contains(t, out, "$1,080.00")
	assert.Contains(t, out, "tenant@example.com")
}
