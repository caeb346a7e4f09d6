// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/utxoledger/cbor"
)

const (
	CertificateTypeStakeRegistration   = 0
	CertificateTypeStakeDeregistration = 1
	CertificateTypeStakeDelegation     = 2
	CertificateTypePoolRegistration    = 3
	CertificateTypePoolRetirement      = 4
	CertificateTypeRegistration        = 7
	CertificateTypeDeregistration      = 8
	CertificateTypeVoteDelegation      = 9
	CertificateTypeRegistrationDrep    = 16
	CertificateTypeDeregistrationDrep  = 17
)

// Certificate is implemented by the concrete certificate types. Certificates are always
// handled as pointers, which is what CertificateWrapper produces
type Certificate interface {
	isCertificate()
	Type() uint
}

type CertificateWrapper struct {
	Type        uint
	Certificate Certificate
}

func (c *CertificateWrapper) UnmarshalCBOR(data []byte) error {
	certType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpCert Certificate
	switch uint(certType) {
	case CertificateTypeStakeRegistration:
		tmpCert = &StakeRegistrationCertificate{}
	case CertificateTypeStakeDeregistration:
		tmpCert = &StakeDeregistrationCertificate{}
	case CertificateTypeStakeDelegation:
		tmpCert = &StakeDelegationCertificate{}
	case CertificateTypePoolRegistration:
		tmpCert = &PoolRegistrationCertificate{}
	case CertificateTypePoolRetirement:
		tmpCert = &PoolRetirementCertificate{}
	case CertificateTypeRegistration:
		tmpCert = &RegistrationCertificate{}
	case CertificateTypeDeregistration:
		tmpCert = &DeregistrationCertificate{}
	case CertificateTypeVoteDelegation:
		tmpCert = &VoteDelegationCertificate{}
	case CertificateTypeRegistrationDrep:
		tmpCert = &RegistrationDrepCertificate{}
	case CertificateTypeDeregistrationDrep:
		tmpCert = &DeregistrationDrepCertificate{}
	default:
		return fmt.Errorf("unknown certificate type: %d", certType)
	}
	if _, err := cbor.Decode(data, tmpCert); err != nil {
		return err
	}
	c.Type = uint(certType)
	c.Certificate = tmpCert
	return nil
}

// Certificates decodes each item through CertificateWrapper
type Certificates []Certificate

func (c *Certificates) UnmarshalCBOR(data []byte) error {
	var tmp []CertificateWrapper
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := make(Certificates, 0, len(tmp))
	for _, w := range tmp {
		ret = append(ret, w.Certificate)
	}
	*c = ret
	return nil
}

type StakeRegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeRegistrationCertificate) isCertificate() {}

func (StakeRegistrationCertificate) Type() uint {
	return CertificateTypeStakeRegistration
}

type StakeDeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeDeregistrationCertificate) isCertificate() {}

func (StakeDeregistrationCertificate) Type() uint {
	return CertificateTypeStakeDeregistration
}

type StakeDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     KeyHash
}

func (StakeDelegationCertificate) isCertificate() {}

func (StakeDelegationCertificate) Type() uint {
	return CertificateTypeStakeDelegation
}

type PoolMetadata struct {
	cbor.StructAsArray
	Url  string
	Hash Blake2b256
}

type PoolRegistrationCertificate struct {
	cbor.StructAsArray
	CertType      uint
	Operator      KeyHash
	VrfKeyHash    Blake2b256
	Pledge        Coin
	Cost          Coin
	Margin        Fractional
	RewardAccount Address
	PoolOwners    []KeyHash
	Relays        []cbor.RawMessage
	PoolMetadata  *PoolMetadata
}

func (PoolRegistrationCertificate) isCertificate() {}

func (PoolRegistrationCertificate) Type() uint {
	return CertificateTypePoolRegistration
}

type PoolRetirementCertificate struct {
	cbor.StructAsArray
	CertType    uint
	PoolKeyHash KeyHash
	Epoch       uint64
}

func (PoolRetirementCertificate) isCertificate() {}

func (PoolRetirementCertificate) Type() uint {
	return CertificateTypePoolRetirement
}

type RegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          Coin
}

func (RegistrationCertificate) isCertificate() {}

func (RegistrationCertificate) Type() uint {
	return CertificateTypeRegistration
}

type DeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          Coin
}

func (DeregistrationCertificate) isCertificate() {}

func (DeregistrationCertificate) Type() uint {
	return CertificateTypeDeregistration
}

const (
	DrepTypeAddrKeyHash  = 0
	DrepTypeScriptHash   = 1
	DrepTypeAbstain      = 2
	DrepTypeNoConfidence = 3
)

type Drep struct {
	Type       uint
	Credential Blake2b224
}

func (d Drep) MarshalCBOR() ([]byte, error) {
	switch d.Type {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		return cbor.Encode([]any{d.Type, d.Credential})
	case DrepTypeAbstain, DrepTypeNoConfidence:
		return cbor.Encode([]any{d.Type})
	default:
		return nil, fmt.Errorf("unknown DRep type: %d", d.Type)
	}
}

func (d *Drep) UnmarshalCBOR(data []byte) error {
	var tmp []cbor.RawMessage
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	if len(tmp) == 0 {
		return errors.New("invalid DRep: empty list")
	}
	if _, err := cbor.Decode(tmp[0], &d.Type); err != nil {
		return err
	}
	switch d.Type {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		if len(tmp) != 2 {
			return fmt.Errorf("invalid DRep: expected 2 items, got %d", len(tmp))
		}
		if _, err := cbor.Decode(tmp[1], &d.Credential); err != nil {
			return err
		}
	case DrepTypeAbstain, DrepTypeNoConfidence:
	default:
		return fmt.Errorf("unknown DRep type: %d", d.Type)
	}
	return nil
}

type VoteDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Drep            Drep
}

func (VoteDelegationCertificate) isCertificate() {}

func (VoteDelegationCertificate) Type() uint {
	return CertificateTypeVoteDelegation
}

type Anchor struct {
	cbor.StructAsArray
	Url      string
	DataHash Blake2b256
}

type RegistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         Coin
	Anchor         *Anchor
}

func (RegistrationDrepCertificate) isCertificate() {}

func (RegistrationDrepCertificate) Type() uint {
	return CertificateTypeRegistrationDrep
}

type DeregistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         Coin
}

func (DeregistrationDrepCertificate) isCertificate() {}

func (DeregistrationDrepCertificate) Type() uint {
	return CertificateTypeDeregistrationDrep
}

// CertificateWitnessCredentials returns the credentials that must authorize the certificate
func CertificateWitnessCredentials(cert Certificate) []Credential {
	switch c := cert.(type) {
	case *StakeRegistrationCertificate:
		// Legacy registration carries no deposit field and needs no witness
		return nil
	case *StakeDeregistrationCertificate:
		return []Credential{c.StakeCredential}
	case *StakeDelegationCertificate:
		return []Credential{c.StakeCredential}
	case *PoolRegistrationCertificate:
		ret := []Credential{NewKeyCredential(c.Operator)}
		for _, owner := range c.PoolOwners {
			if owner != c.Operator {
				ret = append(ret, NewKeyCredential(owner))
			}
		}
		return ret
	case *PoolRetirementCertificate:
		return []Credential{NewKeyCredential(c.PoolKeyHash)}
	case *RegistrationCertificate:
		return []Credential{c.StakeCredential}
	case *DeregistrationCertificate:
		return []Credential{c.StakeCredential}
	case *VoteDelegationCertificate:
		return []Credential{c.StakeCredential}
	case *RegistrationDrepCertificate:
		return []Credential{c.DrepCredential}
	case *DeregistrationDrepCertificate:
		return []Credential{c.DrepCredential}
	}
	return nil
}

// CertificateDeposits computes the total deposits taken and refunds paid by the certificates,
// in order, against the provided state. Registrations earlier in the same list are visible to
// later certificates
func CertificateDeposits(
	certs []Certificate,
	pp *ProtocolParameters,
	ls CertState,
) (deposits Unbounded, refunds Unbounded) {
	newPools := map[KeyHash]bool{}
	stakeDeposits := map[Credential]Coin{}
	drepDeposits := map[Credential]Coin{}
	lookupStake := func(cred Credential) (Coin, bool) {
		if d, ok := stakeDeposits[cred]; ok {
			return d, true
		}
		return ls.StakeRegistration(cred)
	}
	lookupDrep := func(cred Credential) (Coin, bool) {
		if d, ok := drepDeposits[cred]; ok {
			return d, true
		}
		return ls.DRepRegistration(cred)
	}
	for _, cert := range certs {
		switch c := cert.(type) {
		case *StakeRegistrationCertificate:
			deposits = deposits.Add(Coin(pp.KeyDeposit).Unbounded())
			stakeDeposits[c.StakeCredential] = Coin(pp.KeyDeposit)
		case *RegistrationCertificate:
			deposits = deposits.Add(c.Amount.Unbounded())
			stakeDeposits[c.StakeCredential] = c.Amount
		case *StakeDeregistrationCertificate:
			if d, ok := lookupStake(c.StakeCredential); ok {
				refunds = refunds.Add(d.Unbounded())
			}
		case *DeregistrationCertificate:
			refunds = refunds.Add(c.Amount.Unbounded())
		case *PoolRegistrationCertificate:
			_, registered := ls.PoolRegistration(c.Operator)
			if !registered && !newPools[c.Operator] {
				deposits = deposits.Add(Coin(pp.PoolDeposit).Unbounded())
				newPools[c.Operator] = true
			}
		case *RegistrationDrepCertificate:
			deposits = deposits.Add(c.Amount.Unbounded())
			drepDeposits[c.DrepCredential] = c.Amount
		case *DeregistrationDrepCertificate:
			if _, ok := lookupDrep(c.DrepCredential); ok {
				refunds = refunds.Add(c.Amount.Unbounded())
			}
		}
	}
	return deposits, refunds
}
