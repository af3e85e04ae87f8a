package authorization

import "github.com/casbin/casbin/v2"

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Viewer permissions (read-only)
		{"role:viewer", ObjectCompany, ActionCompanyView},
		{"role:viewer", ObjectFiscalYear, ActionFiscalYearView},
		{"role:viewer", ObjectAccount, ActionAccountView},
		{"role:viewer", ObjectSeries, ActionSeriesView},
		{"role:viewer", ObjectCustomer, ActionCustomerView},
		{"role:viewer", ObjectJournal, ActionJournalView},
		{"role:viewer", ObjectDocument, ActionDocumentView},
		{"role:viewer", ObjectClosing, ActionClosingView},

		// Sales permissions
		{"role:sales", ObjectCompany, ActionCompanyView},
		{"role:sales", ObjectAccount, ActionAccountView},
		{"role:sales", ObjectSeries, ActionSeriesView},
		{"role:sales", ObjectCustomer, ActionCustomerView},
		{"role:sales", ObjectCustomer, ActionCustomerCreate},
		{"role:sales", ObjectCustomer, ActionCustomerUpdate},
		{"role:sales", ObjectCustomer, ActionCustomerCreditCheck},
		{"role:sales", ObjectDocument, ActionDocumentView},
		{"role:sales", ObjectDocument, ActionDocumentCreate},
		{"role:sales", ObjectDocument, ActionDocumentUpdateStatus},
		{"role:sales", ObjectDocument, ActionDocumentConvert},
		{"role:sales", ObjectDocument, ActionDocumentSend},

		// Accountant permissions
		{"role:accountant", ObjectCompany, ActionCompanyView},
		{"role:accountant", ObjectFiscalYear, ActionFiscalYearView},
		{"role:accountant", ObjectFiscalYear, ActionFiscalYearCreate},
		{"role:accountant", ObjectFiscalYear, ActionFiscalYearClosePeriod},
		{"role:accountant", ObjectAccount, ActionAccountView},
		{"role:accountant", ObjectAccount, ActionAccountCreate},
		{"role:accountant", ObjectAccount, ActionAccountDeactivate},
		{"role:accountant", ObjectSeries, ActionSeriesView},
		{"role:accountant", ObjectSeries, ActionSeriesCreate},
		{"role:accountant", ObjectSeries, ActionSeriesUpdate},
		{"role:accountant", ObjectCustomer, ActionCustomerView},
		{"role:accountant", ObjectCustomer, ActionCustomerCreditCheck},
		{"role:accountant", ObjectJournal, ActionJournalView},
		{"role:accountant", ObjectJournal, ActionJournalCreate},
		{"role:accountant", ObjectJournal, ActionJournalUpdate},
		{"role:accountant", ObjectJournal, ActionJournalPost},
		{"role:accountant", ObjectDocument, ActionDocumentView},
		{"role:accountant", ObjectDocument, ActionDocumentPost},
		{"role:accountant", ObjectDocument, ActionDocumentPay},
		{"role:accountant", ObjectClosing, ActionClosingView},
		{"role:accountant", ObjectClosing, ActionClosingStart},
		{"role:accountant", ObjectClosing, ActionClosingExecute},
		{"role:accountant", ObjectAuditLog, ActionAuditLogView},

		// Admin permissions
		{"role:admin", ObjectCompany, ActionCompanyView},
		{"role:admin", ObjectCompany, ActionCompanyCreate},
		{"role:admin", ObjectCompany, ActionCompanyUpdate},
		{"role:admin", ObjectFiscalYear, ActionFiscalYearView},
		{"role:admin", ObjectFiscalYear, ActionFiscalYearCreate},
		{"role:admin", ObjectFiscalYear, ActionFiscalYearClosePeriod},
		{"role:admin", ObjectFiscalYear, ActionFiscalYearReopenPeriod},
		{"role:admin", ObjectAccount, ActionAccountView},
		{"role:admin", ObjectAccount, ActionAccountCreate},
		{"role:admin", ObjectAccount, ActionAccountDeactivate},
		{"role:admin", ObjectSeries, ActionSeriesView},
		{"role:admin", ObjectSeries, ActionSeriesCreate},
		{"role:admin", ObjectSeries, ActionSeriesUpdate},
		{"role:admin", ObjectCustomer, ActionCustomerView},
		{"role:admin", ObjectCustomer, ActionCustomerCreate},
		{"role:admin", ObjectCustomer, ActionCustomerUpdate},
		{"role:admin", ObjectCustomer, ActionCustomerCreditCheck},
		{"role:admin", ObjectJournal, ActionJournalView},
		{"role:admin", ObjectJournal, ActionJournalCreate},
		{"role:admin", ObjectJournal, ActionJournalUpdate},
		{"role:admin", ObjectJournal, ActionJournalPost},
		{"role:admin", ObjectDocument, ActionDocumentView},
		{"role:admin", ObjectDocument, ActionDocumentCreate},
		{"role:admin", ObjectDocument, ActionDocumentUpdateStatus},
		{"role:admin", ObjectDocument, ActionDocumentConvert},
		{"role:admin", ObjectDocument, ActionDocumentPost},
		{"role:admin", ObjectDocument, ActionDocumentPay},
		{"role:admin", ObjectDocument, ActionDocumentSend},
		{"role:admin", ObjectClosing, ActionClosingView},
		{"role:admin", ObjectClosing, ActionClosingStart},
		{"role:admin", ObjectClosing, ActionClosingExecute},
		{"role:admin", ObjectClosing, ActionClosingSkip},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},

		// System permissions (scheduler and automated processes)
		{"role:system", ObjectDocument, ActionDocumentView},
		{"role:system", ObjectDocument, ActionDocumentUpdateStatus},
		{"role:system", ObjectDocument, ActionDocumentSend},
		{"role:system", ObjectJournal, ActionJournalPost},
		{"role:system", ObjectClosing, ActionClosingExecute},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
