package services

import "fmt"

// Owner is whoever a medication schedule belongs to: a signed-in user or an
// anonymous guest device.
type Owner struct {
	Key      string
	UserID   uint
	CoupleID *string
}

func UserOwner(userID uint, coupleID *string) Owner {
	return Owner{Key: fmt.Sprintf("user:%d", userID), UserID: userID, CoupleID: coupleID}
}

func GuestOwner(guestID string) Owner {
	return Owner{Key: "guest:" + guestID}
}

func (owner Owner) Authenticated() bool {
	return owner.UserID != 0
}
