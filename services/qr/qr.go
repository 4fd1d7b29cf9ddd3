// Package qrsvc renders student scan codes as printable QR badges.
package qrsvc

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// badge size in pixels; large enough for reliable phone-camera scans when
// printed on an A6 card.
const badgeSize = 512

type BadgeService struct{}

func NewBadgeService() *BadgeService {
	return &BadgeService{}
}

// Badge encodes a student's scan UUID as a PNG QR code.
func (svc BadgeService) Badge(scanUUID string) ([]byte, error) {
	png, err := qrcode.Encode(scanUUID, qrcode.Medium, badgeSize)
	if err != nil {
		return nil, errors.Wrap(err, "encoding QR badge")
	}
	return png, nil
}
