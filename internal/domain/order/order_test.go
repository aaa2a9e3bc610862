package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVendorItems() ([]Item, []string) {
	items := []Item{
		{ProductID: "p-desk", ProductName: "Walnut Desk", Quantity: 3, UnitPrice: 10},
		{ProductID: "p-lamp", ProductName: "Brass Lamp", Quantity: 1, UnitPrice: 25},
	}
	return items, []string{"v-1", "v-2"}
}

func TestNew(t *testing.T) {
	items, vendors := twoVendorItems()

	testCases := map[string]struct {
		customerID  string
		items       []Item
		expectedErr error
	}{
		"valid order": {
			customerID: "c-1",
			items:      items,
		},
		"missing customer": {
			items:       items,
			expectedErr: ErrInvalidCustomer,
		},
		"no items": {
			customerID:  "c-1",
			expectedErr: ErrEmptyItems,
		},
		"item without product": {
			customerID:  "c-1",
			items:       []Item{{Quantity: 1, UnitPrice: 5}},
			expectedErr: ErrInvalidProduct,
		},
		"zero quantity": {
			customerID:  "c-1",
			items:       []Item{{ProductID: "p-desk", Quantity: 0, UnitPrice: 5}},
			expectedErr: ErrInvalidQuantity,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			o, err := New("o-1", "EC-12345678", tc.customerID, tc.items, vendors, Address{City: "Leeds"})
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, o.Status)
			assert.Equal(t, 55.0, o.TotalAmount)
			require.Len(t, o.VendorStatus, 2)
			for _, vs := range o.VendorStatus {
				assert.Equal(t, VendorProcessing, vs.Status)
				assert.False(t, vs.Rated)
			}
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.Dispatchable())
	assert.False(t, StatusProcessing.Dispatchable())
	assert.False(t, StatusDispatched.Dispatchable())

	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusProcessing.Cancellable())
	assert.False(t, StatusDispatched.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())

	assert.True(t, StatusPending.Editable())
	assert.True(t, StatusProcessing.Editable())
	assert.False(t, StatusDispatched.Editable())

	assert.True(t, StatusDispatched.Open())
	assert.True(t, StatusCancellationRequested.Open())
	assert.False(t, StatusCancelled.Open())
	assert.False(t, StatusDelivered.Open())

	assert.False(t, Status("Unshipped").Valid())
	assert.True(t, StatusPartiallyDelivered.Valid())
}

func TestSetVendorStatusRollUp(t *testing.T) {
	items, vendors := twoVendorItems()
	o, err := New("o-1", "EC-12345678", "c-1", items, vendors, Address{})
	require.NoError(t, err)
	o.Status = StatusDispatched

	_, err = o.SetVendorStatus("v-9", VendorDelivered)
	assert.ErrorIs(t, err, ErrVendorNotInOrder)

	delivered, err := o.SetVendorStatus("v-1", VendorDelivered)
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Equal(t, StatusPartiallyDelivered, o.Status)

	delivered, err = o.SetVendorStatus("v-2", VendorDelivered)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, StatusDelivered, o.Status)

	// The order is already fully delivered; repeating the last update must
	// not report a fresh completion.
	delivered, err = o.SetVendorStatus("v-2", VendorDelivered)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestReplaceItemsKeepsVendorState(t *testing.T) {
	items, vendors := twoVendorItems()
	o, err := New("o-1", "EC-12345678", "c-1", items, vendors, Address{})
	require.NoError(t, err)

	entry := o.VendorEntry("v-1")
	require.NotNil(t, entry)
	entry.Rated = true

	next := []Item{
		{ProductID: "p-desk", ProductName: "Walnut Desk", Quantity: 2, UnitPrice: 10},
		{ProductID: "p-rug", ProductName: "Wool Rug", Quantity: 1, UnitPrice: 40},
	}
	require.NoError(t, o.ReplaceItems(next, []string{"v-1", "v-3"}))

	assert.Equal(t, 60.0, o.TotalAmount)
	require.Len(t, o.VendorStatus, 2)
	assert.True(t, o.VendorEntry("v-1").Rated)
	assert.Equal(t, VendorProcessing, o.VendorEntry("v-3").Status)
	assert.Nil(t, o.VendorEntry("v-2"))

	assert.ErrorIs(t, o.ReplaceItems(nil, nil), ErrEmptyItems)
}

func TestCloneIsDeep(t *testing.T) {
	items, vendors := twoVendorItems()
	o, err := New("o-1", "EC-12345678", "c-1", items, vendors, Address{})
	require.NoError(t, err)

	c := o.Clone()
	c.Items[0].Quantity = 99
	c.VendorStatus[0].Status = VendorDelivered

	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, VendorProcessing, o.VendorStatus[0].Status)
}
