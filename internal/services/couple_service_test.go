package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/miffy/internal/models"
)

type stubCoupleRepo struct {
	couples map[string]models.Couple
	members []models.CoupleMember
	addErr  error
}

func newStubCoupleRepo() *stubCoupleRepo {
	return &stubCoupleRepo{couples: make(map[string]models.Couple)}
}

func (stub *stubCoupleRepo) CreateWithOwner(couple *models.Couple) error {
	if couple.ID == "" {
		couple.ID = "couple-1"
	}
	stub.couples[couple.ID] = *couple
	stub.members = append(stub.members, models.CoupleMember{
		ID:       uint(len(stub.members) + 1),
		CoupleID: couple.ID,
		UserID:   couple.CreatedBy,
		Role:     models.CoupleRoleOwner,
	})
	return nil
}

func (stub *stubCoupleRepo) FindByID(coupleID string) (models.Couple, bool, error) {
	couple, ok := stub.couples[coupleID]
	return couple, ok, nil
}

func (stub *stubCoupleRepo) AddMember(member *models.CoupleMember) error {
	if stub.addErr != nil {
		return stub.addErr
	}
	member.ID = uint(len(stub.members) + 1)
	stub.members = append(stub.members, *member)
	return nil
}

func (stub *stubCoupleRepo) FindMember(coupleID string, userID uint) (models.CoupleMember, bool, error) {
	for _, member := range stub.members {
		if member.CoupleID == coupleID && member.UserID == userID {
			return member, true, nil
		}
	}
	return models.CoupleMember{}, false, nil
}

func (stub *stubCoupleRepo) ListMembers(coupleID string) ([]models.CoupleMember, error) {
	members := make([]models.CoupleMember, 0)
	for _, member := range stub.members {
		if member.CoupleID == coupleID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (stub *stubCoupleRepo) ListMembershipsByUser(userID uint) ([]models.CoupleMember, error) {
	members := make([]models.CoupleMember, 0)
	for _, member := range stub.members {
		if member.UserID == userID {
			members = append(members, member)
		}
	}
	return members, nil
}

func TestCoupleServiceCreateAndJoin(t *testing.T) {
	repo := newStubCoupleRepo()
	service := NewCoupleService(repo)

	couple, err := service.Create(1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	member, err := service.Join(2, couple.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if member.Role != models.CoupleRoleGuardian {
		t.Fatalf("expected guardian role, got %q", member.Role)
	}

	again, err := service.Join(2, couple.ID)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if again.ID != member.ID {
		t.Fatalf("expected join to be idempotent, got %d and %d", member.ID, again.ID)
	}

	members, err := service.Members(1, couple.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("expected two members, got %+v (%v)", members, err)
	}
	if _, err := service.Members(3, couple.ID); !errors.Is(err, ErrCoupleMembershipRequired) {
		t.Fatalf("expected ErrCoupleMembershipRequired for outsider, got %v", err)
	}
}

func TestCoupleServiceJoinUnknownCouple(t *testing.T) {
	service := NewCoupleService(newStubCoupleRepo())
	if _, err := service.Join(2, "missing"); !errors.Is(err, ErrCoupleNotFound) {
		t.Fatalf("expected ErrCoupleNotFound, got %v", err)
	}
	if _, err := service.Join(2, "  "); !errors.Is(err, ErrCoupleNotFound) {
		t.Fatalf("expected ErrCoupleNotFound for blank id, got %v", err)
	}
}

func TestCoupleServiceResolveActiveRequiresMembership(t *testing.T) {
	repo := newStubCoupleRepo()
	service := NewCoupleService(repo)
	couple, _ := service.Create(1)

	active, err := service.ResolveActive(1, couple.ID)
	if err != nil || active == nil || *active != couple.ID {
		t.Fatalf("expected member's couple honored, got %v (%v)", active, err)
	}
	if active, _ := service.ResolveActive(5, couple.ID); active != nil {
		t.Fatalf("expected non-member's remembered couple ignored, got %q", *active)
	}
	if active, _ := service.ResolveActive(1, ""); active != nil {
		t.Fatal("expected no active couple without a remembered one")
	}
}
