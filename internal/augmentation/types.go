// Package augmentation implements the dispatch loop: fanning auctions out
// to connected augmentor instances, collecting responses, and enforcing a
// wall-clock deadline on each auction's augmentation wait.
package augmentation

import "augmentloop/pkg/wire"

// BidderConfig is the read-only view the dispatcher needs of one bidder's
// configuration: which augmentor names it wants consulted.
type BidderConfig interface {
	AugmentorNames() []string
}

// Bidder is one participant in an auction's potential groups.
type Bidder struct {
	AgentID string
	Config  BidderConfig
}

// BidderGroup is one group of bidders sharing eligibility for an auction.
type BidderGroup struct {
	Bidders []Bidder
}

// AuctionInfo is the opaque handle a caller supplies to Augment. The loop
// reads the auction's shape from it at dispatch time and writes merged
// augmentations back into it as responses arrive.
type AuctionInfo interface {
	AuctionID() string
	RequestFormat() string
	RequestBlob() []byte
	PotentialGroups() []BidderGroup

	// MergeAugmentation folds one augmentor's contribution into the
	// caller's own storage. Called on the loop thread only.
	MergeAugmentation(augmentorName string, list wire.AugmentationList)
}
