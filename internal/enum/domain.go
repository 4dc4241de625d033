package enum

type DomainStatus string

const (
	DomainStatusPending   DomainStatus = "pending"
	DomainStatusVerifying DomainStatus = "verifying"
	DomainStatusVerified  DomainStatus = "verified"
	DomainStatusFailed    DomainStatus = "failed"
	DomainStatusSuspended DomainStatus = "suspended"
)

func (t DomainStatus) String() string {
	return string(t)
}

type DNSRecordType string

const (
	DNSRecordTypeTXT   DNSRecordType = "TXT"
	DNSRecordTypeCNAME DNSRecordType = "CNAME"
	DNSRecordTypeMX    DNSRecordType = "MX"
	DNSRecordTypeA     DNSRecordType = "A"
)

func (t DNSRecordType) String() string {
	return string(t)
}
