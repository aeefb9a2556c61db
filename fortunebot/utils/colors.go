package utils

const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// FortuneColor is the lantern red used on event embeds.
	FortuneColor = 0xC8102E
	GoldColor    = 0xFFD700
)
