/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package doozez

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/model"
)

// Reconciliation handlers: each advances the local state machine matching one
// gateway notification. The link id on the event is the gateway's id for the
// affected resource; when it does not map to anything local the event is
// ignored (the gateway also notifies about resources doozez never created).

func (d *Doozez) mandateCreated(ctx context.Context, gcEvent model.GatewayEvent) error {
	return d.advanceMandateChain(gcEvent, nil, model.PaymentMethodExternallyCreated)
}

func (d *Doozez) mandateSubmitted(ctx context.Context, gcEvent model.GatewayEvent) error {
	submit := func(m *model.Mandate) error { return m.Submit() }
	return d.advanceMandateChain(gcEvent, submit, model.PaymentMethodExternallySubmitted)
}

func (d *Doozez) mandateActive(ctx context.Context, gcEvent model.GatewayEvent) error {
	activate := func(m *model.Mandate) error { return m.Activate() }
	return d.advanceMandateChain(gcEvent, activate, model.PaymentMethodExternallyActivated)
}

// advanceMandateChain moves the mandate (when transition is non-nil) and its
// owning payment method one step along the external lifecycle.
func (d *Doozez) advanceMandateChain(gcEvent model.GatewayEvent, transition func(*model.Mandate) error, target model.PaymentMethodStatus) error {
	method, err := d.datasource.GetPaymentMethodByMandateExternalID(gcEvent.LinkID)
	if err != nil {
		return err
	}
	if method == nil {
		logrus.WithField("link_id", gcEvent.LinkID).Info("mandate event for unknown mandate, ignoring")
		return nil
	}

	if transition != nil && method.Mandate != nil {
		if err := transition(method.Mandate); err != nil {
			return err
		}
		if err := d.datasource.UpdateMandate(method.Mandate); err != nil {
			return err
		}
	}

	if err := method.Advance(target); err != nil {
		return err
	}
	return d.datasource.UpdatePaymentMethodStatus(method.PaymentMethodID, method.Status)
}

// mandateTerminated handles the gateway closing a mandate (failed, cancelled
// or expired). The payment method stays where it is; it simply can never
// reach ExternallyActivated.
func (d *Doozez) mandateTerminated(to model.MandateStatus) EventHandler {
	return func(ctx context.Context, gcEvent model.GatewayEvent) error {
		mandate, err := d.datasource.GetMandateByExternalID(gcEvent.LinkID)
		if err != nil {
			return err
		}
		if mandate == nil {
			logrus.WithField("link_id", gcEvent.LinkID).Info("mandate event for unknown mandate, ignoring")
			return nil
		}
		if err := mandate.Terminate(to); err != nil {
			return err
		}
		return d.datasource.UpdateMandate(mandate)
	}
}

// paymentConfirmed marks the payment Confirmed and pokes the safe: this
// confirmation may have been the last thing the startup was waiting on. A
// poke refusal is expected whenever the safe is past Starting, so it is
// logged, never propagated.
func (d *Doozez) paymentConfirmed(ctx context.Context, gcEvent model.GatewayEvent) error {
	payment, err := d.datasource.GetPaymentByExternalID(gcEvent.LinkID)
	if err != nil {
		return err
	}
	if payment == nil {
		logrus.WithField("link_id", gcEvent.LinkID).Info("payment event for unknown payment, ignoring")
		return nil
	}
	if err := payment.Confirm(); err != nil {
		return err
	}
	if err := d.datasource.UpdatePaymentStatus(payment.PaymentID, payment.Status); err != nil {
		return err
	}

	d.pokeForParticipation(ctx, payment.ParticipationID, PokePaymentConfirmed)
	return nil
}

func (d *Doozez) paymentFailed(to model.PaymentStatus) EventHandler {
	return func(ctx context.Context, gcEvent model.GatewayEvent) error {
		payment, err := d.datasource.GetPaymentByExternalID(gcEvent.LinkID)
		if err != nil {
			return err
		}
		if payment == nil {
			logrus.WithField("link_id", gcEvent.LinkID).Info("payment event for unknown payment, ignoring")
			return nil
		}
		if err := payment.MarkFailed(to); err != nil {
			return err
		}
		return d.datasource.UpdatePaymentStatus(payment.PaymentID, payment.Status)
	}
}

// instalmentCreated marks the instalment schedule Active and pokes the safe.
func (d *Doozez) instalmentCreated(ctx context.Context, gcEvent model.GatewayEvent) error {
	instalment, err := d.datasource.GetInstalmentByExternalID(gcEvent.LinkID)
	if err != nil {
		return err
	}
	if instalment == nil {
		logrus.WithField("link_id", gcEvent.LinkID).Info("instalment event for unknown schedule, ignoring")
		return nil
	}
	if err := instalment.Activate(); err != nil {
		return err
	}
	if err := d.datasource.UpdateInstalmentStatus(instalment.InstalmentID, instalment.Status); err != nil {
		return err
	}

	d.pokeForParticipation(ctx, instalment.ParticipationID, PokeInstalmentActivated)
	return nil
}

func (d *Doozez) pokeForParticipation(ctx context.Context, participationID string, pokeType PokeType) {
	participation, err := d.datasource.GetParticipationByID(participationID)
	if err != nil {
		logrus.WithError(err).WithField("participation_id", participationID).Warn("could not resolve safe for poke")
		return
	}
	if _, err := d.Poke(ctx, PokeEvent{SafeID: participation.SafeID, Type: pokeType}); err != nil {
		logrus.WithError(err).WithField("safe_id", participation.SafeID).Info("poke declined")
	}
}
