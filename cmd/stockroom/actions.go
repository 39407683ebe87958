package main

import (
	"fmt"

	"github.com/Veraticus/stockroom/internal/cli"
	"github.com/Veraticus/stockroom/internal/common"
	"github.com/Veraticus/stockroom/internal/model"
	"github.com/Veraticus/stockroom/internal/tui/components"
	"github.com/spf13/cobra"
)

func applyPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply-price PRODUCT_ID STORE_ID",
		Short: "Apply a price recommendation",
		Long: `Submit the current price recommendation for one product in one store.

The recommendation is looked up in a fresh dashboard load and removed from
the working set once the backend acknowledges the change.`,
		Args: cobra.ExactArgs(2),
		RunE: runApplyPrice,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runApplyPrice(cmd *cobra.Command, args []string) error {
	key, err := parseKey(args)
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	rec, ok := s.Store.State().PriceRec(key)
	if !ok {
		return fmt.Errorf("%w: no price recommendation for product %d at store %d",
			common.ErrRecommendationNotFound, key.ProductID, key.StoreID)
	}

	fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("Price change for product %d at store %d", key.ProductID, key.StoreID),
		cli.RenderKeyValues([][2]string{
			{"Current", "$" + rec.CurrentPrice.StringFixed(2)},
			{"Recommended", "$" + rec.RecommendedPrice.StringFixed(2)},
			{"Change", components.FormatAdjustment(rec)},
			{"Priority", string(rec.Priority())},
			{"Reason", rec.Reason},
		})))

	if !yes {
		confirmed, err := cli.NewConfirmer(cmd.InOrStdin(), out).Confirm(cmd.Context(), "Apply this price change?")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, cli.FormatInfo("Cancelled."))
			return nil
		}
	}

	ctx, cancel := s.actionContext(cmd.Context())
	defer cancel()

	if err := s.Store.ApplyPriceChange(ctx, rec); err != nil {
		return fmt.Errorf("failed to apply price change: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Price for product %d at store %d set to $%s",
		key.ProductID, key.StoreID, rec.RecommendedPrice.StringFixed(2))))
	return nil
}

func placeOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place-order PRODUCT_ID STORE_ID",
		Short: "Place an order for a reorder recommendation",
		Long: `Order the recommended quantity for one product in one store.

Delivery is expected after the supplier lead time. The order is tagged with
an idempotency key so the next reload can match it to the backend's record.`,
		Args: cobra.ExactArgs(2),
		RunE: runPlaceOrder,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runPlaceOrder(cmd *cobra.Command, args []string) error {
	key, err := parseKey(args)
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Store.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	rec, ok := s.Store.State().ReorderRec(key)
	if !ok {
		return fmt.Errorf("%w: no reorder recommendation for product %d at store %d",
			common.ErrRecommendationNotFound, key.ProductID, key.StoreID)
	}

	fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("Order for product %d at store %d", key.ProductID, key.StoreID),
		cli.RenderKeyValues([][2]string{
			{"Quantity", model.FormatQuantity(rec.ReorderQuantity) + " units"},
			{"Stock", fmt.Sprintf("%.0f", rec.CurrentStock)},
			{"Demand", fmt.Sprintf("%.1f", rec.ExpectedDemand)},
			{"Urgency", cli.FormatUrgency(rec.Urgency)},
		})))

	if !yes {
		confirmed, err := cli.NewConfirmer(cmd.InOrStdin(), out).Confirm(cmd.Context(), "Place this order?")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, cli.FormatInfo("Cancelled."))
			return nil
		}
	}

	ctx, cancel := s.actionContext(cmd.Context())
	defer cancel()

	order, err := s.Store.PlaceOrder(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	id := order.BackendOrderID
	if id == "" {
		id = order.ID
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Order %s placed: %s units, expected %s",
		id, model.FormatQuantity(order.Quantity), order.ExpectedDelivery)))
	return nil
}
