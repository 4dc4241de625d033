package dnsverify

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/interfaces"
)

// liveResolver queries a configured DNS server directly via miekg/dns,
// one query per record type with its own timeout.
type liveResolver struct {
	server  string
	timeout time.Duration
}

func NewLiveResolver(cfg *config.DNSConfig) interfaces.Resolver {
	return &liveResolver{
		server:  cfg.ResolverAddress,
		timeout: time.Duration(cfg.QueryTimeoutSec) * time.Second,
	}
}

func (r *liveResolver) query(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	client := &dns.Client{Timeout: r.timeout}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	response, _, err := client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, errors.Wrapf(err, "dns query failed for %s", name)
	}
	if response.Rcode != dns.RcodeSuccess {
		return nil, errors.Errorf("dns query for %s returned %s", name, dns.RcodeToString[response.Rcode])
	}

	return response, nil
}

func (r *liveResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	response, err := r.query(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, answer := range response.Answer {
		if txt, ok := answer.(*dns.TXT); ok {
			// long TXT values arrive split into 255-byte character strings
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}

	return values, nil
}

func (r *liveResolver) LookupCNAME(ctx context.Context, name string) (string, error) {
	response, err := r.query(ctx, name, dns.TypeCNAME)
	if err != nil {
		return "", err
	}

	for _, answer := range response.Answer {
		if cname, ok := answer.(*dns.CNAME); ok {
			return strings.TrimSuffix(cname.Target, "."), nil
		}
	}

	return "", errors.Errorf("no CNAME record found for %s", name)
}

func (r *liveResolver) LookupMX(ctx context.Context, name string) ([]string, error) {
	response, err := r.query(ctx, name, dns.TypeMX)
	if err != nil {
		return nil, err
	}

	var exchanges []string
	for _, answer := range response.Answer {
		if mx, ok := answer.(*dns.MX); ok {
			exchanges = append(exchanges, strings.TrimSuffix(mx.Mx, "."))
		}
	}

	return exchanges, nil
}
