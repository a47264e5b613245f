package domain

import "time"

// ChargeView is the external representation of a charge. The same shape
// is returned by the API and stored as the cached value for a charge id.
type ChargeView struct {
	ChargeID       string       `json:"charge_id"`
	PixKey         string       `json:"pix_key"`
	ExpirationDate time.Time    `json:"expiration_date"`
	Status         ChargeStatus `json:"status"`
}

// View maps a charge to its external representation. A charge without an
// expiration date renders it as the current time.
func (c Charge) View() ChargeView {
	expiration := time.Now()
	if c.ExpirationDate != nil {
		expiration = *c.ExpirationDate
	}
	return ChargeView{
		ChargeID:       c.ID,
		PixKey:         c.PixKey,
		ExpirationDate: expiration,
		Status:         c.Status,
	}
}
