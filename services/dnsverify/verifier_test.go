package dnsverify

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
)

type fakeResolver struct {
	txt   map[string][]string
	cname map[string]string
	mx    map[string][]string
	fail  map[string]error
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	return f.txt[name], nil
}

func (f *fakeResolver) LookupCNAME(_ context.Context, name string) (string, error) {
	if err, ok := f.fail[name]; ok {
		return "", err
	}
	if target, ok := f.cname[name]; ok {
		return target, nil
	}
	return "", errors.New("no CNAME record found")
}

func (f *fakeResolver) LookupMX(_ context.Context, name string) ([]string, error) {
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	return f.mx[name], nil
}

func testDomain() *models.Domain {
	return &models.Domain{
		Tenant: "acme",
		Domain: "acme.com",
		VerificationRecords: models.DNSRecords{
			{Type: enum.DNSRecordTypeTXT, Name: "acme.com", Value: "v=spf1 include:spf.relaypoint.io ~all", TTL: 300},
			{Type: enum.DNSRecordTypeTXT, Name: "_verification.acme.com", Value: "mailguard-verification=abc123", TTL: 300},
		},
	}
}

func TestVerifyDomainRecords_AllPresent(t *testing.T) {
	v := NewVerifier(&fakeResolver{txt: map[string][]string{
		"acme.com":               {"v=spf1 include:spf.relaypoint.io ~all"},
		"_verification.acme.com": {"mailguard-verification=abc123"},
	}})

	result := v.VerifyDomainRecords(context.Background(), testDomain())

	assert.True(t, result.IsVerified)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Records, 2)
	for _, check := range result.Records {
		assert.True(t, check.IsPresent)
	}
}

func TestVerifyDomainRecords_MissingRecord(t *testing.T) {
	v := NewVerifier(&fakeResolver{txt: map[string][]string{
		"acme.com": {"v=spf1 include:spf.relaypoint.io ~all"},
	}})

	result := v.VerifyDomainRecords(context.Background(), testDomain())

	assert.False(t, result.IsVerified)
	assert.True(t, result.Records[0].IsPresent)
	assert.False(t, result.Records[1].IsPresent)
}

func TestVerifyDomainRecords_LookupFailureDoesNotAbortOthers(t *testing.T) {
	v := NewVerifier(&fakeResolver{
		txt: map[string][]string{
			"_verification.acme.com": {"mailguard-verification=abc123"},
		},
		fail: map[string]error{
			"acme.com": errors.New("query timed out"),
		},
	})

	result := v.VerifyDomainRecords(context.Background(), testDomain())

	assert.False(t, result.IsVerified)
	assert.False(t, result.Records[0].IsPresent)
	assert.Contains(t, result.Records[0].Error, "query timed out")
	assert.True(t, result.Records[1].IsPresent)
	assert.Len(t, result.Errors, 1)
}

func TestVerifyDomainRecords_Idempotent(t *testing.T) {
	v := NewVerifier(&fakeResolver{txt: map[string][]string{
		"acme.com":               {"v=spf1 include:spf.relaypoint.io ~all"},
		"_verification.acme.com": {"mailguard-verification=abc123"},
	}})

	first := v.VerifyDomainRecords(context.Background(), testDomain())
	second := v.VerifyDomainRecords(context.Background(), testDomain())

	assert.Equal(t, first.IsVerified, second.IsVerified)
	assert.Equal(t, first.Records, second.Records)
}

func TestCheckRecord_TXTLooseContainment(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		observed []string
		present  bool
	}{
		{"exact", "v=spf1 ~all", []string{"v=spf1 ~all"}, true},
		{"observed contains expected", "spf1", []string{"v=spf1 include:x ~all"}, true},
		{"expected contains observed", "v=spf1 include:x ~all extra", []string{"v=spf1 include:x ~all"}, true},
		{"unrelated", "v=spf1 ~all", []string{"google-site-verification=zzz"}, false},
		{"no records", "v=spf1 ~all", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &verifier{resolver: &fakeResolver{txt: map[string][]string{"acme.com": tt.observed}}}
			check := v.checkRecord(context.Background(), models.DNSRecord{
				Type: enum.DNSRecordTypeTXT, Name: "acme.com", Value: tt.expected,
			})
			assert.Equal(t, tt.present, check.IsPresent)
		})
	}
}

func TestCheckRecord_CNAMEExactMatch(t *testing.T) {
	v := &verifier{resolver: &fakeResolver{cname: map[string]string{
		"track.acme.com": "track.relaypoint.io",
	}}}

	check := v.checkRecord(context.Background(), models.DNSRecord{
		Type: enum.DNSRecordTypeCNAME, Name: "track.acme.com", Value: "track.relaypoint.io",
	})
	assert.True(t, check.IsPresent)

	check = v.checkRecord(context.Background(), models.DNSRecord{
		Type: enum.DNSRecordTypeCNAME, Name: "track.acme.com", Value: "other.relaypoint.io",
	})
	assert.False(t, check.IsPresent)
}

func TestCheckRecord_MXExactExchange(t *testing.T) {
	v := &verifier{resolver: &fakeResolver{mx: map[string][]string{
		"acme.com": {"mx1.relaypoint.io", "mx2.relaypoint.io"},
	}}}

	check := v.checkRecord(context.Background(), models.DNSRecord{
		Type: enum.DNSRecordTypeMX, Name: "acme.com", Value: "mx2.relaypoint.io",
	})
	assert.True(t, check.IsPresent)
	assert.Equal(t, "mx2.relaypoint.io", check.ObservedValue)

	check = v.checkRecord(context.Background(), models.DNSRecord{
		Type: enum.DNSRecordTypeMX, Name: "acme.com", Value: "mx3.relaypoint.io",
	})
	assert.False(t, check.IsPresent)
}
