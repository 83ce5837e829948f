package main

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/app"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/monitor"
	"github.com/obridge/weave/x"
	"github.com/obridge/weave/x/cash"
	"github.com/obridge/weave/x/htlc"
	"github.com/obridge/weave/x/settings"
	"github.com/obridge/weave/x/swap"
	"github.com/obridge/weave/x/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// stack builds the handler executing all operations supported by the
// daemon and the initializer loading their genesis state.
func stack(bank cash.Controller, reg prometheus.Registerer, journal *monitor.Journal) (weave.Handler, weave.Initializer) {
	auth := x.SignerAuth{}

	r := app.NewRouter()
	cash.RegisterRoutes(r, auth, bank)
	settings.RegisterRoutes(r, auth)
	htlc.RegisterRoutes(r, auth, bank)
	swap.RegisterRoutes(r, auth, bank)

	h := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewMetrics(reg),
		journal,
	).WithHandler(r)

	init := weave.ChainInitializers(
		cash.Initializer{},
		settings.Initializer{},
		htlc.Initializer{},
	)
	return h, init
}

// msgTypes maps a message path to a constructor of the message, used to
// decode submitted operations.
var msgTypes = map[string]func() weave.Msg{
	"cash/send":                      func() weave.Msg { return &cash.SendMsg{} },
	"settings/initialize":            func() weave.Msg { return &settings.InitializeMsg{} },
	"settings/change_admin":          func() weave.Msg { return &settings.ChangeAdminMsg{} },
	"settings/set_fee_recipient":     func() weave.Msg { return &settings.SetFeeRecipientMsg{} },
	"settings/set_fee_rate":          func() weave.Msg { return &settings.SetFeeRateMsg{} },
	"settings/set_max_fee_for_token": func() weave.Msg { return &settings.SetMaxFeeForTokenMsg{} },
	"settings/set_reservation":       func() weave.Msg { return &settings.SetReservationMsg{} },
	"htlc/prepare":                   func() weave.Msg { return &htlc.PrepareMsg{} },
	"htlc/confirm":                   func() weave.Msg { return &htlc.ConfirmMsg{} },
	"htlc/refund":                    func() weave.Msg { return &htlc.RefundMsg{} },
	"htlc/update_configuration":      func() weave.Msg { return &htlc.UpdateConfigurationMsg{} },
	"swap/prepare":                   func() weave.Msg { return &swap.PrepareMsg{} },
	"swap/confirm":                   func() weave.Msg { return &swap.ConfirmMsg{} },
	"swap/refund":                    func() weave.Msg { return &swap.RefundMsg{} },
}

// gconfTypes lists configurations that can be queried.
var gconfTypes = map[string]func() gconf.Configuration{
	"htlc":     func() gconf.Configuration { return &htlc.Configuration{} },
	"settings": func() gconf.Configuration { return &settings.Registry{} },
}
