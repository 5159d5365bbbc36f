package afip

import (
	"encoding/xml"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ticketValidityMargin is subtracted from the TA expiration when checking
// validity, so a ticket about to expire mid-request is renewed early.
const ticketValidityMargin = 60 * time.Second

// AccessTicket is the WSAA Ticket de Acceso: the token+sign credential pair
// required in the Auth block of every WSFE call. Immutable — a stale ticket
// is replaced wholesale, never mutated.
type AccessTicket struct {
	Token          string
	Sign           string
	GenerationTime time.Time
	ExpirationTime time.Time
}

// Valid reports whether the ticket can still be used at the given instant.
func (t *AccessTicket) Valid(now time.Time) bool {
	return t != nil && now.Before(t.ExpirationTime.Add(-ticketValidityMargin))
}

// taFile mirrors the loginTicketResponse document that WSAA returns; the
// same shape is reused to persist the current TA across process restarts.
type taFile struct {
	XMLName xml.Name `xml:"loginTicketResponse"`
	Version string   `xml:"version,attr"`
	Header  struct {
		Source         string `xml:"source"`
		Destination    string `xml:"destination"`
		UniqueID       uint64 `xml:"uniqueId"`
		GenerationTime string `xml:"generationTime"`
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Credentials struct {
		Token string `xml:"token"`
		Sign  string `xml:"sign"`
	} `xml:"credentials"`
}

// TicketCache holds the current TA in a two-tier cache: an in-memory slot
// plus an XML side-artifact on disk, so a restart does not force a needless
// WSAA round-trip. Tier-2 failures (missing file, malformed XML, write
// errors) degrade to a cache miss — they are logged, never propagated.
type TicketCache struct {
	mu     sync.Mutex
	path   string
	ticket *AccessTicket
	tried  bool // disk fallback already attempted
}

// NewTicketCache creates an empty cache backed by the given file path.
// An empty path disables the disk tier.
func NewTicketCache(path string) *TicketCache {
	return &TicketCache{path: path}
}

// Get returns the cached ticket, or nil when there is none. On the first
// miss after process start it tries to reload the TA from disk.
func (c *TicketCache) Get() *AccessTicket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ticket != nil {
		return c.ticket
	}
	if c.tried || c.path == "" {
		return nil
	}
	c.tried = true

	t, err := readTicketFile(c.path)
	if err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("wsaa: TA en disco descartado")
		return nil
	}
	c.ticket = t
	return c.ticket
}

// Put replaces the cached ticket and overwrites the side-artifact.
func (c *TicketCache) Put(t *AccessTicket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ticket = t
	if c.path == "" {
		return
	}
	if err := writeTicketFile(c.path, t); err != nil {
		// Best effort: the process keeps the TA in memory and will simply
		// re-authenticate on the next restart.
		log.Warn().Err(err).Str("path", c.path).Msg("wsaa: no se pudo persistir el TA")
	}
}

func readTicketFile(path string) (*AccessTicket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc taFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return ticketFromResponse(&doc)
}

func writeTicketFile(path string, t *AccessTicket) error {
	var doc taFile
	doc.Version = "1.0"
	doc.Header.Source = "wsaa"
	doc.Header.Destination = "facturador"
	doc.Header.GenerationTime = t.GenerationTime.Format(time.RFC3339)
	doc.Header.ExpirationTime = t.ExpirationTime.Format(time.RFC3339)
	doc.Credentials.Token = t.Token
	doc.Credentials.Sign = t.Sign

	data, err := xml.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0600)
}

// ticketFromResponse validates and converts a loginTicketResponse document.
func ticketFromResponse(doc *taFile) (*AccessTicket, error) {
	if doc.Credentials.Token == "" || doc.Credentials.Sign == "" {
		return nil, errMissingCredentials
	}
	gen, err := time.Parse(time.RFC3339, doc.Header.GenerationTime)
	if err != nil {
		return nil, err
	}
	exp, err := time.Parse(time.RFC3339, doc.Header.ExpirationTime)
	if err != nil {
		return nil, err
	}
	return &AccessTicket{
		Token:          doc.Credentials.Token,
		Sign:           doc.Credentials.Sign,
		GenerationTime: gen,
		ExpirationTime: exp,
	}, nil
}
