package cont

import (
	"MarketChat/entity"
	"context"
)

type partyKey struct{}

func PutParty(ctx context.Context, party entity.Party) context.Context {
	return context.WithValue(ctx, partyKey{}, party)
}

// GetParty returns the authenticated caller, if any.
func GetParty(ctx context.Context) (entity.Party, bool) {
	party, ok := ctx.Value(partyKey{}).(entity.Party)
	return party, ok
}
