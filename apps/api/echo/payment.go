package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/auth"
	"github.com/epointy/backend/core/payment"
	"github.com/epointy/backend/core/user"
)

type paymentApi struct {
	svc      payment.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := paymentApi{
		svc:      opts.PaymentSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	pg := g.Group("/payments", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, staffMiddleware())

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy)
}

// Handlers

// query returns all payments for the staff; a student only ever sees
// their own, due date first.
func (api *paymentApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !auth.CanViewPayments(ctxUsr) {
		return errHttpForbidden
	}

	var payments []payment.Payment
	if ctxUsr.IsStudent() {
		payments, err = api.svc.QueryByStudent(ctx.Request().Context(), ctxUsr.ID)
	} else {
		payments, err = api.svc.QueryAll(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	pmt, err := api.pathPayment(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// a student only ever sees their own
	if ctxUsr.IsStudent() && pmt.StudentID != ctxUsr.ID {
		return errHttpNotFound
	}
	if !auth.CanViewPayments(ctxUsr) {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) update(ctx echo.Context) error {
	pmt, err := api.pathPayment(ctx)
	if err != nil {
		return err
	}

	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(pmt, api.validate); err != nil {
		return err
	}

	pmt, err = api.svc.Update(ctx.Request().Context(), pmt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

// destroy deletes a payment. The admin can delete any; a direction member
// cannot delete one already marked PAID.
func (api *paymentApi) destroy(ctx echo.Context) error {
	pmt, err := api.pathPayment(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !auth.CanDeletePayment(ctxUsr, pmt) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), pmt.ID); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paymentApi) pathPayment(ctx echo.Context) (payment.Payment, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return payment.Payment{}, errHttpNotFound
	}
	pmt, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return payment.Payment{}, errHttpNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "finding payment by ID")
	}
	return pmt, nil
}
