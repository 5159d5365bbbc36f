package afip

// soap.go — typed SOAP envelopes for WSAA and WSFEv1.
// The protocol shapes are explicit structs serialized with encoding/xml;
// no string templating, so request construction and response parsing are
// testable without a transport.

import "encoding/xml"

const (
	soapEnvNS = "http://schemas.xmlsoap.org/soap/envelope/"
	wsaaNS    = "http://wsaa.view.sua.dvadac.desein.afip.gov"
	wsfeNS    = "http://ar.gov.afip.dif.FEV1/"
)

// ── WSAA ─────────────────────────────────────────────────────────────────────

// loginCmsRequest wraps the base64 CMS envelope for the loginCms operation.
type loginCmsRequest struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soapenv,attr"`
	XmlnsWsaa string   `xml:"xmlns:wsaa,attr"`
	Body      struct {
		LoginCms struct {
			In0 string `xml:"wsaa:in0"`
		} `xml:"wsaa:loginCms"`
	} `xml:"soapenv:Body"`
}

func newLoginCmsRequest(cmsBase64 string) *loginCmsRequest {
	req := &loginCmsRequest{XmlnsSoap: soapEnvNS, XmlnsWsaa: wsaaNS}
	req.Body.LoginCms.In0 = cmsBase64
	return req
}

// loginCmsResponse carries the escaped loginTicketResponse XML document.
type loginCmsResponse struct {
	Body struct {
		Response struct {
			Return string `xml:"loginCmsReturn"`
		} `xml:"loginCmsResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// loginTicketRequest is the TRA (Ticket de Requerimiento de Acceso) that
// gets CMS-signed and submitted to WSAA.
type loginTicketRequest struct {
	XMLName xml.Name `xml:"loginTicketRequest"`
	Version string   `xml:"version,attr"`
	Header  struct {
		UniqueID       uint64 `xml:"uniqueId"`
		GenerationTime string `xml:"generationTime"`
		ExpirationTime string `xml:"expirationTime"`
	} `xml:"header"`
	Service string `xml:"service"`
}

// ── WSFEv1 ───────────────────────────────────────────────────────────────────

// feAuth is the Auth block required on every WSFE operation.
type feAuth struct {
	Token string `xml:"ar:Token"`
	Sign  string `xml:"ar:Sign"`
	Cuit  int64  `xml:"ar:Cuit"`
}

type codedEntry struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

// FECompUltimoAutorizado — last authorized invoice number per
// {PtoVta, CbteTipo}.

type feUltimoRequest struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soapenv,attr"`
	XmlnsAr   string   `xml:"xmlns:ar,attr"`
	Body      struct {
		Op struct {
			Auth     feAuth `xml:"ar:Auth"`
			PtoVta   int    `xml:"ar:PtoVta"`
			CbteTipo int    `xml:"ar:CbteTipo"`
		} `xml:"ar:FECompUltimoAutorizado"`
	} `xml:"soapenv:Body"`
}

func newFEUltimoRequest(auth feAuth, ptoVta, cbteTipo int) *feUltimoRequest {
	req := &feUltimoRequest{XmlnsSoap: soapEnvNS, XmlnsAr: wsfeNS}
	req.Body.Op.Auth = auth
	req.Body.Op.PtoVta = ptoVta
	req.Body.Op.CbteTipo = cbteTipo
	return req
}

type feUltimoResponse struct {
	Body struct {
		Response struct {
			Result struct {
				PtoVta   int          `xml:"PtoVta"`
				CbteTipo int          `xml:"CbteTipo"`
				CbteNro  int64        `xml:"CbteNro"`
				Errors   []codedEntry `xml:"Errors>Err"`
			} `xml:"FECompUltimoAutorizadoResult"`
		} `xml:"FECompUltimoAutorizadoResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

// FECAESolicitar — CAE request, always a batch of exactly one detail.

type feCAEDetRequest struct {
	Concepto   int     `xml:"ar:Concepto"`
	DocTipo    int     `xml:"ar:DocTipo"`
	DocNro     int64   `xml:"ar:DocNro"`
	CbteDesde  int64   `xml:"ar:CbteDesde"`
	CbteHasta  int64   `xml:"ar:CbteHasta"`
	CbteFch    string  `xml:"ar:CbteFch"` // YYYYMMDD
	ImpTotal   float64 `xml:"ar:ImpTotal"`
	ImpTotConc float64 `xml:"ar:ImpTotConc"`
	ImpNeto    float64 `xml:"ar:ImpNeto"`
	ImpOpEx    float64 `xml:"ar:ImpOpEx"`
	ImpTrib    float64 `xml:"ar:ImpTrib"`
	ImpIVA     float64 `xml:"ar:ImpIVA"`
	MonID      string  `xml:"ar:MonId"`
	MonCotiz   float64 `xml:"ar:MonCotiz"`
	IVA        []feAlicIVA `xml:"ar:Iva>ar:AlicIva,omitempty"`
}

type feAlicIVA struct {
	ID      int     `xml:"ar:Id"`
	BaseImp float64 `xml:"ar:BaseImp"`
	Importe float64 `xml:"ar:Importe"`
}

type feCAERequest struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soapenv,attr"`
	XmlnsAr   string   `xml:"xmlns:ar,attr"`
	Body      struct {
		Op struct {
			Auth     feAuth `xml:"ar:Auth"`
			FeCAEReq struct {
				FeCabReq struct {
					CantReg  int `xml:"ar:CantReg"`
					PtoVta   int `xml:"ar:PtoVta"`
					CbteTipo int `xml:"ar:CbteTipo"`
				} `xml:"ar:FeCabReq"`
				FeDetReq struct {
					Det feCAEDetRequest `xml:"ar:FECAEDetRequest"`
				} `xml:"ar:FeDetReq"`
			} `xml:"ar:FeCAEReq"`
		} `xml:"ar:FECAESolicitar"`
	} `xml:"soapenv:Body"`
}

func newFECAERequest(auth feAuth, ptoVta, cbteTipo int, det feCAEDetRequest) *feCAERequest {
	req := &feCAERequest{XmlnsSoap: soapEnvNS, XmlnsAr: wsfeNS}
	req.Body.Op.Auth = auth
	req.Body.Op.FeCAEReq.FeCabReq.CantReg = 1
	req.Body.Op.FeCAEReq.FeCabReq.PtoVta = ptoVta
	req.Body.Op.FeCAEReq.FeCabReq.CbteTipo = cbteTipo
	req.Body.Op.FeCAEReq.FeDetReq.Det = det
	return req
}

type feCAEResponse struct {
	Body struct {
		Response struct {
			Result struct {
				FeCabResp struct {
					PtoVta    int    `xml:"PtoVta"`
					CbteTipo  int    `xml:"CbteTipo"`
					Resultado string `xml:"Resultado"`
				} `xml:"FeCabResp"`
				FeDetResp struct {
					Det struct {
						CbteDesde     int64        `xml:"CbteDesde"`
						CbteHasta     int64        `xml:"CbteHasta"`
						Resultado     string       `xml:"Resultado"`
						CAE           string       `xml:"CAE"`
						CAEFchVto     string       `xml:"CAEFchVto"` // YYYYMMDD
						Observaciones []codedEntry `xml:"Observaciones>Obs"`
					} `xml:"FECAEDetResponse"`
				} `xml:"FeDetResp"`
				Errors []codedEntry `xml:"Errors>Err"`
			} `xml:"FECAESolicitarResult"`
		} `xml:"FECAESolicitarResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}
