package ticketing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const qrVersion = "mmt1"

var ErrInvalidQR = errors.New("invalid ticket code")

// Signer issues and checks gate codes of the form mmt1.<ticket>.<mac>.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) mac(ticketID, eventID, ownerID uuid.UUID) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(ticketID.String() + "|" + eventID.String() + "|" + ownerID.String()))
	return h.Sum(nil)
}

func (s *Signer) Sign(ticketID, eventID, ownerID uuid.UUID) string {
	sig := base64.RawURLEncoding.EncodeToString(s.mac(ticketID, eventID, ownerID))
	return qrVersion + "." + ticketID.String() + "." + sig
}

// parse splits a payload and returns the ticket id with the raw signature.
// It does not check the signature, which needs the stored ticket.
func parse(payload string) (uuid.UUID, []byte, error) {
	parts := strings.Split(strings.TrimSpace(payload), ".")
	if len(parts) != 3 || parts[0] != qrVersion {
		return uuid.Nil, nil, ErrInvalidQR
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, nil, ErrInvalidQR
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return uuid.Nil, nil, ErrInvalidQR
	}
	return id, sig, nil
}

func (s *Signer) valid(sig []byte, ticketID, eventID, ownerID uuid.UUID) bool {
	return hmac.Equal(sig, s.mac(ticketID, eventID, ownerID))
}
