// Package festival is an embeddable ticketing engine for a single event.
//
// It keeps two ledgers side by side: FTK, a fungible currency with
// allowances, and FNFT, a registry of numbered ticket units. Units are
// sold once by the organiser through a primary sale and then resold
// between holders on a secondary marketplace whose asks are capped at 110%
// of the last price paid.
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/festival"
//	    "github.com/xraph/festival/store/memory"
//	)
//
//	f := festival.New(memory.New(), organiser)
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Stop(ctx)
//
// Start writes genesis state on the first run: the sale configuration,
// a zero fee rate and the initial FTK supply held by the organiser.
//
// # Primary sale
//
// The organiser opens the sale once. Buyers approve Address() as FTK
// spender and mint units at the configured price:
//
//	f.StartSale(ctx, organiser)
//	f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(30))
//	receipt, err := f.PublicMint(ctx, buyer, 3)
//
// # Marketplace
//
// A holder lists a unit; a buyer who has approved Address() pays the exact
// ask. The fee goes to the fee recipient and the rest to the seller:
//
//	f.SetListing(ctx, seller, unitID, festival.FTK(11))
//	settlement, err := f.PurchaseListing(ctx, buyer, unitID, festival.FTK(11))
//
// Any transfer outside the marketplace withdraws the unit's listing.
//
// # Consistency
//
// Every operation runs as one store transaction under a single writer
// lock. A rejected operation changes nothing. Errors carry a Kind that
// groups them into authorization, state, validation, funds and not-found
// failures.
//
// # TypeID
//
// Receipts carry TypeIDs:
//
//	mint_01h2xcejqtf2nbrexx3vqjhp41   // primary-sale receipt
//	lst_01h2xcejqtf2nbrexx3vqjhp41    // listing
//	stl_01h455vb4pex5vsknk084sn02q    // settlement
package festival
