package helpers

// TotalAmount is the full charge for a party.
func TotalAmount(guestsCount int, chargePerHead float64) float64 {
	return float64(guestsCount) * chargePerHead
}

// DepositFee is what remains of total once the deposit percentage is taken
// off.
func DepositFee(totalAmount, depositPercentage float64) float64 {
	return totalAmount - totalAmount*depositPercentage
}

// PaymentAmounts recomputes both derived fields from scratch.
func PaymentAmounts(guestsCount int, chargePerHead, depositPercentage float64) (total, deposit float64) {
	total = TotalAmount(guestsCount, chargePerHead)
	return total, DepositFee(total, depositPercentage)
}
