package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/swapnil12348/gocart/internal/domain"
	"github.com/swapnil12348/gocart/internal/repositories"
)

// ErrAddressInvalidInput signals a malformed address submission.
var ErrAddressInvalidInput = errors.New("address: invalid input")

// AddressServiceDeps bundles dependencies required to construct an AddressService.
type AddressServiceDeps struct {
	Addresses repositories.AddressRepository
	Clock     Clock
	IDGen     IDGenerator
}

type addressService struct {
	addresses repositories.AddressRepository
	clock     Clock
	idGen     IDGenerator
}

// NewAddressService wires an AddressService backed by the provided repository.
func NewAddressService(deps AddressServiceDeps) (AddressService, error) {
	if deps.Addresses == nil {
		return nil, errors.New("address service: address repository is required")
	}
	if deps.IDGen == nil {
		return nil, errors.New("address service: id generator is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &addressService{
		addresses: deps.Addresses,
		clock:     func() time.Time { return clock().UTC() },
		idGen:     deps.IDGen,
	}, nil
}

func (s *addressService) AddAddress(ctx context.Context, cmd AddAddressCommand) (domain.Address, error) {
	if strings.TrimSpace(cmd.Shopper.UserID) == "" {
		return domain.Address{}, ErrAddressInvalidInput
	}
	name := strings.TrimSpace(cmd.Name)
	street := strings.TrimSpace(cmd.Street)
	city := strings.TrimSpace(cmd.City)
	country := strings.TrimSpace(cmd.Country)
	if name == "" || street == "" || city == "" || country == "" {
		return domain.Address{}, ErrAddressInvalidInput
	}

	return s.addresses.Insert(ctx, domain.Address{
		ID:      "addr_" + s.idGen(),
		UserID:  cmd.Shopper.UserID,
		Name:    name,
		Email:   strings.TrimSpace(cmd.Email),
		Street:  street,
		City:    city,
		State:   strings.TrimSpace(cmd.State),
		ZIP:     strings.TrimSpace(cmd.ZIP),
		Country: country,
		Phone:   strings.TrimSpace(cmd.Phone),
	})
}

func (s *addressService) ListAddresses(ctx context.Context, shopper Shopper) ([]domain.Address, error) {
	if strings.TrimSpace(shopper.UserID) == "" {
		return nil, ErrAddressInvalidInput
	}
	return s.addresses.ListByUser(ctx, shopper.UserID)
}
