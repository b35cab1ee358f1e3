package steps

const (
	AlreadyInstalled    = "alreadyInstalled"
	InstalledByThisStep = "installed"
	ReceiptByThisStep   = "receiptRecorded"
	CleanedUpByThisStep = "cleanedUp"
)
