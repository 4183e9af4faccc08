package region

import "errors"

var (
	ErrRegionExists      = errors.New("region already registered")
	ErrUnknownSpell      = errors.New("unknown spell template")
	ErrSpellCooldown     = errors.New("spell is cooling down")
	ErrCastFailed        = errors.New("cast failed")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrInventoryFull     = errors.New("inventory is full")
	ErrItemNotFound      = errors.New("item not found")
	ErrUnknownItem       = errors.New("unknown item class")
	ErrNotEquippable     = errors.New("item has no slot")
	ErrUnknownSector     = errors.New("unknown sector")
	ErrNotAnEntity       = errors.New("subject is not an entity")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotTakeable       = errors.New("item is fixed in place")
)
