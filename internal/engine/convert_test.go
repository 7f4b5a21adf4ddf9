package engine

import (
	"fmt"
	"testing"

	"github.com/seenimoa/fundline/pkg/models"
)

func samplePayload() models.Payload {
	return models.Payload{
		"Total Revenue":          models.Float(1000),
		"Net Income":             models.Float(100),
		"Diluted Average Shares": models.Float(50),
		"Share Issued":           models.Float(52),
		"Ordinary Shares Number": models.Float(51),
		"Empty Field":            nil,
	}
}

func fmtVal(v *float64) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%.4f", *v)
}

func TestConvertScalesCurrencyFields(t *testing.T) {
	in := samplePayload()
	out := Convert(in, 1.1, "EUR", "USD", models.ItemIncomeStatement, ConvertOptions{})

	if got := out.Value("Total Revenue"); got == nil || *got < 1099.99 || *got > 1100.01 {
		t.Errorf("expected revenue ~1100, got %s", fmtVal(got))
	}
	if got := out.Value("Net Income"); got == nil || *got < 109.99 || *got > 110.01 {
		t.Errorf("expected net income ~110, got %s", fmtVal(got))
	}
}

func TestConvertSkipsSharesFields(t *testing.T) {
	out := Convert(samplePayload(), 2, "EUR", "USD", models.ItemBalanceSheet, ConvertOptions{})

	if got := out.Value("Diluted Average Shares"); got == nil || *got != 50 {
		t.Errorf("expected shares untouched at 50, got %s", fmtVal(got))
	}
	if got := out.Value("Share Issued"); got == nil || *got != 52 {
		t.Errorf("expected issued shares untouched at 52, got %s", fmtVal(got))
	}
	if got := out.Value("Ordinary Shares Number"); got == nil || *got != 51 {
		t.Errorf("expected ordinary shares untouched at 51, got %s", fmtVal(got))
	}
}

func TestConvertSameCurrencyNoOp(t *testing.T) {
	in := samplePayload()
	out := Convert(in, 1.1, "USD", "usd", models.ItemIncomeStatement, ConvertOptions{})

	if got := out.Value("Total Revenue"); got == nil || *got != 1000 {
		t.Errorf("expected unchanged revenue 1000, got %s", fmtVal(got))
	}
}

func TestConvertNonPositiveRateNoOp(t *testing.T) {
	out := Convert(samplePayload(), 0, "EUR", "USD", models.ItemIncomeStatement, ConvertOptions{})
	if got := out.Value("Total Revenue"); got == nil || *got != 1000 {
		t.Errorf("expected unchanged revenue 1000, got %s", fmtVal(got))
	}
}

func TestConvertNeverMutatesInput(t *testing.T) {
	in := samplePayload()
	Convert(in, 3, "EUR", "USD", models.ItemIncomeStatement, ConvertOptions{})

	if got := in.Value("Total Revenue"); got == nil || *got != 1000 {
		t.Errorf("input payload was mutated: revenue %s", fmtVal(got))
	}
}

func TestConvertSnapshotsOptIn(t *testing.T) {
	in := models.Payload{"Target Mean Price": models.Float(200)}

	out := Convert(in, 2, "EUR", "USD", models.ItemAnalystPriceTargets, ConvertOptions{})
	if got := out.Value("Target Mean Price"); got == nil || *got != 200 {
		t.Errorf("expected snapshot untouched by default, got %s", fmtVal(got))
	}

	out = Convert(in, 2, "EUR", "USD", models.ItemAnalystPriceTargets, ConvertOptions{IncludeSnapshots: true})
	if got := out.Value("Target Mean Price"); got == nil || *got != 400 {
		t.Errorf("expected snapshot converted when opted in, got %s", fmtVal(got))
	}
}
