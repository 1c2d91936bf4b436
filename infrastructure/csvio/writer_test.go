package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmint/firmint/domain/enrichment"
)

func TestWriteRecords(t *testing.T) {
	records := []enrichment.Record{
		enrichment.NewRecord("OpenAI", enrichment.NewFields("openai.com", "AI", "500-1000", "San Francisco")),
		enrichment.NewFailedRecord("Zoho", "rate limited"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	want := "company_name,website,industry,company_size,hq_location,status,error_message\n" +
		"OpenAI,openai.com,AI,500-1000,San Francisco,ok,\n" +
		"Zoho,,,,,failed,rate limited\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRecords_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))

	assert.Equal(t, "company_name,website,industry,company_size,hq_location,status,error_message\n", buf.String())
}

func TestWriteRecords_QuotesCommaValues(t *testing.T) {
	records := []enrichment.Record{
		enrichment.NewRecord("Zoho", enrichment.NewFields("zoho.com", "SaaS", "10000+", "Chennai, India")),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	assert.Contains(t, buf.String(), `"Chennai, India"`)
}

func TestMarshalRecords(t *testing.T) {
	data, err := MarshalRecords([]enrichment.Record{
		enrichment.NewRecord("Stripe", enrichment.NewFields("stripe.com", "Fintech", "", "")),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("company_name,")))
}

func TestWriteRecords_RoundTripThroughReader(t *testing.T) {
	records := []enrichment.Record{
		enrichment.NewRecord("OpenAI", enrichment.NewFields("openai.com", "AI", "", "")),
		enrichment.NewFailedRecord("Zoho", "rate limited"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	names, err := ReadCompanyNames(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, []string{"OpenAI", "Zoho"}, names)
}
