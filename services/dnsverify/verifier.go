package dnsverify

import (
	"context"
	"strings"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
)

type verifier struct {
	resolver interfaces.Resolver
}

func NewVerifier(resolver interfaces.Resolver) interfaces.DNSVerifier {
	return &verifier{
		resolver: resolver,
	}
}

// VerifyDomainRecords checks every expected record against live DNS. Records
// are checked concurrently; a lookup failure marks that record absent and is
// reported in the result, it never aborts the remaining checks.
func (v *verifier) VerifyDomainRecords(ctx context.Context, domain *models.Domain) *dto.DomainVerificationResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSVerifier.VerifyDomainRecords")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domain.Domain)

	result := &dto.DomainVerificationResult{
		Domain:  domain.Domain,
		Records: make([]dto.RecordCheck, len(domain.VerificationRecords)),
	}

	var wg sync.WaitGroup
	for i, record := range domain.VerificationRecords {
		wg.Add(1)
		go func(i int, record models.DNSRecord) {
			defer wg.Done()
			result.Records[i] = v.checkRecord(ctx, record)
		}(i, record)
	}
	wg.Wait()

	result.IsVerified = true
	for _, check := range result.Records {
		if !check.IsPresent {
			result.IsVerified = false
		}
		if check.Error != "" {
			result.Errors = append(result.Errors, check.Error)
		}
	}

	span.LogKV("result.isVerified", result.IsVerified)
	return result
}

func (v *verifier) checkRecord(ctx context.Context, record models.DNSRecord) dto.RecordCheck {
	check := dto.RecordCheck{Record: record}

	switch record.Type {
	case enum.DNSRecordTypeTXT:
		values, err := v.resolver.LookupTXT(ctx, record.Name)
		if err != nil {
			check.Error = err.Error()
			return check
		}
		for _, value := range values {
			if txtMatches(record.Value, value) {
				check.IsPresent = true
				check.ObservedValue = value
				break
			}
		}

	case enum.DNSRecordTypeCNAME:
		target, err := v.resolver.LookupCNAME(ctx, record.Name)
		if err != nil {
			check.Error = err.Error()
			return check
		}
		check.ObservedValue = target
		check.IsPresent = target == record.Value

	case enum.DNSRecordTypeMX:
		exchanges, err := v.resolver.LookupMX(ctx, record.Name)
		if err != nil {
			check.Error = err.Error()
			return check
		}
		for _, exchange := range exchanges {
			if exchange == record.Value {
				check.IsPresent = true
				check.ObservedValue = exchange
				break
			}
		}

	default:
		check.Error = errors.Errorf("unsupported record type %s for %s", record.Type, record.Name).Error()
	}

	return check
}

// txtMatches is deliberately tolerant of quoting and formatting differences:
// the record is present when either value contains the other.
func txtMatches(expected, observed string) bool {
	return strings.Contains(expected, observed) || strings.Contains(observed, expected)
}
