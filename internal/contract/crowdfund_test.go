package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var testAddress = common.HexToAddress(DefaultAddress)

type fakeCaller struct {
	outputs map[string][]interface{}
	fail    map[string]error
	calls   []string
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := CrowdFundABI()
	if err != nil {
		return nil, err
	}
	if msg.To == nil || *msg.To != testAddress {
		return nil, fmt.Errorf("unexpected target %v", msg.To)
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, method.Name)
	if err := f.fail[method.Name]; err != nil {
		return nil, err
	}
	return method.Outputs.Pack(f.outputs[method.Name]...)
}

func TestGetCampaign(t *testing.T) {
	creator := common.HexToAddress("0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199")
	goal, _ := new(big.Int).SetString("5500000000000000000", 10)
	raised, _ := new(big.Int).SetString("3200000000000000000", 10)

	caller := &fakeCaller{outputs: map[string][]interface{}{
		"getCampaign": {creator, "Renewable Energy Project", "Solar farm", goal, raised, big.NewInt(1700000000), false},
	}}
	cf, err := NewCrowdFund(testAddress, caller, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}

	rec, err := cf.GetCampaign(context.Background(), 1)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if rec.Creator != creator || rec.Title != "Renewable Energy Project" || rec.Description != "Solar farm" {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if rec.FundingGoal.Cmp(goal) != 0 || rec.AmountRaised.Cmp(raised) != 0 {
		t.Fatalf("amount mismatch: %+v", rec)
	}
	if rec.Deadline.Int64() != 1700000000 || rec.IsClosed {
		t.Fatalf("deadline/closed mismatch: %+v", rec)
	}
}

func TestCampaignIDs(t *testing.T) {
	user := common.HexToAddress("0x1234567890123456789012345678901234567890")
	caller := &fakeCaller{outputs: map[string][]interface{}{
		"getCampaignCount": {big.NewInt(3)},
		"getAllCampaigns":  {[]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}},
		"getUserCampaigns": {[]*big.Int{big.NewInt(2)}},
	}}
	cf, err := NewCrowdFund(testAddress, caller, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}
	ctx := context.Background()

	count, err := cf.CampaignCount(ctx)
	if err != nil || count != 3 {
		t.Fatalf("count: %d %v", count, err)
	}

	all, err := cf.AllCampaignIDs(ctx)
	if err != nil {
		t.Fatalf("all ids: %v", err)
	}
	if !reflect.DeepEqual(all, []uint64{1, 2, 3}) {
		t.Fatalf("all ids mismatch: %v", all)
	}

	mine, err := cf.UserCampaignIDs(ctx, user)
	if err != nil {
		t.Fatalf("user ids: %v", err)
	}
	if !reflect.DeepEqual(mine, []uint64{2}) {
		t.Fatalf("user ids mismatch: %v", mine)
	}
}

func TestCallErrorIsWrapped(t *testing.T) {
	boom := errors.New("rpc down")
	caller := &fakeCaller{fail: map[string]error{"getCampaignCount": boom}}
	cf, err := NewCrowdFund(testAddress, caller, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}
	if _, err := cf.CampaignCount(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped rpc error, got %v", err)
	}
}

func TestWritesRequireBackend(t *testing.T) {
	cf, err := NewCrowdFund(testAddress, &fakeCaller{}, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}
	if _, err := cf.WithdrawFunds(nil, 1); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
	if _, err := cf.WaitMined(context.Background(), types.NewTx(&types.LegacyTx{})); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
}

func TestDecodeCampaignCreated(t *testing.T) {
	parsed, err := CrowdFundABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	cf, err := NewCrowdFund(testAddress, &fakeCaller{}, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}

	creator := common.HexToAddress("0x9876543210987654321098765432109876543210")
	log := campaignCreatedLog(t, testAddress, 42, creator)

	ev, err := cf.DecodeLog(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Name != EventCampaignCreated {
		t.Fatalf("unexpected event: %s", ev.Name)
	}
	if len(ev.Args) != len(parsed.Events[EventCampaignCreated].Inputs) {
		t.Fatalf("arg count mismatch: %d", len(ev.Args))
	}
	id, err := ev.BigArg("campaignId")
	if err != nil || id.Uint64() != 42 {
		t.Fatalf("campaign id mismatch: %v %v", id, err)
	}
	who, err := ev.AddressArg("creator")
	if err != nil || who != creator.Hex() {
		t.Fatalf("creator mismatch: %s %v", who, err)
	}
	if ev.Values["title"] != "Ocean Cleanup" {
		t.Fatalf("title mismatch: %v", ev.Values["title"])
	}
}

func TestCreatedCampaignIDSkipsForeignLogs(t *testing.T) {
	cf, err := NewCrowdFund(testAddress, &fakeCaller{}, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}
	creator := common.HexToAddress("0x9876543210987654321098765432109876543210")

	foreign := campaignCreatedLog(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), 7, creator)
	garbage := types.Log{Address: testAddress, Topics: []common.Hash{common.HexToHash("0xdeadbeef")}}
	ours := campaignCreatedLog(t, testAddress, 9, creator)

	receipt := &types.Receipt{Logs: []*types.Log{&foreign, &garbage, &ours}}
	id, ok := cf.CreatedCampaignID(receipt)
	if !ok || id != 9 {
		t.Fatalf("expected id 9, got %d %v", id, ok)
	}

	if _, ok := cf.CreatedCampaignID(&types.Receipt{}); ok {
		t.Fatalf("empty receipt should not yield an id")
	}
}

func TestDecodeLogRejectsUnknownTopic(t *testing.T) {
	cf, err := NewCrowdFund(testAddress, &fakeCaller{}, nil)
	if err != nil {
		t.Fatalf("binding: %v", err)
	}
	if _, err := cf.DecodeLog(types.Log{}); err == nil {
		t.Fatalf("expected error for missing topics")
	}
	if _, err := cf.DecodeLog(types.Log{Topics: []common.Hash{common.BytesToHash(bytes.Repeat([]byte{1}, 32))}}); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}

func campaignCreatedLog(t *testing.T, address common.Address, id int64, creator common.Address) types.Log {
	t.Helper()
	parsed, err := CrowdFundABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	ev := parsed.Events[EventCampaignCreated]
	data, err := ev.Inputs.NonIndexed().Pack("Ocean Cleanup", big.NewInt(4000), big.NewInt(1700000000))
	if err != nil {
		t.Fatalf("pack created: %v", err)
	}
	return types.Log{
		Address: address,
		Topics: []common.Hash{
			ev.ID,
			common.BigToHash(big.NewInt(id)),
			common.BytesToHash(common.LeftPadBytes(creator.Bytes(), 32)),
		},
		Data: data,
	}
}
