package builder

// General guide sheet columns.
const (
	ColTrackingID   = "NumeroGuia"
	ColDate         = "Fecha"
	ColSender       = "Remitente"
	ColAddressee    = "Destinatario"
	ColReference1   = "Referencia 1"
	ColReference2   = "Referencia 2"
	ColCreditCode   = "CCredito"
	ColStatus       = "Estado"
	ColReason       = "Motivo"
	ColDestination  = "Destino"
	ColReceivedBy   = "Recibido Por"
	ColReceivedDate = "Fecha Recibido"
	ColReceivedTime = "Recibido Hora"
)

// Settlement sheet columns, as named in the sheet's header row.
const (
	ColSettlementID    = "Guia"
	ColPieces          = "Piezas"
	ColSettlementState = "Estado"
	ColCODAmount       = "Valor COD"
	ColCash            = "Efectivo"
	ColCommission      = "Comision"
	ColCommissionValue = "Valor Comision"
	ColSettledAmount   = "Liquidado"
	ColOperation       = "Operacion"
	ColAuthorization   = "Autorizacion"
	ColAccountNumber   = "No. Cuenta"
)

var GuideColumns = []string{
	ColTrackingID, ColDate, ColSender, ColAddressee, ColReference1, ColReference2,
	ColCreditCode, ColStatus, ColReason, ColDestination, ColReceivedBy,
	ColReceivedDate, ColReceivedTime,
}

var SettlementColumns = []string{
	ColSettlementID, ColPieces, ColSettlementState, ColCODAmount, ColCash, ColCommission,
	ColCommissionValue, ColSettledAmount, ColOperation, ColAuthorization, ColAccountNumber,
}
