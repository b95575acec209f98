package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and is
// used by the ops handlers and the chat transport wiring.
type ServiceContainer struct {
	Identity  IdentitySvcFacade
	Record    RecordSvcFacade
	Payment   PaymentSvcFacade
	Mirror    MirrorSvcFacade
	Reconcile ReconcileSvcFacade
	Metadata  MetadataSvcFacade
	Report    ReportSvcFacade
}
