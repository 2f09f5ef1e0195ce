package model

import "time"

// Role names as stored in the `usuarios` table. They form a strict
// hierarchy: operador < gestor < admin. An operador is bound to a
// single hospital unit, while gestor and admin see every unit.
const (
    RoleOperador = "operador"
    RoleGestor   = "gestor"
    RoleAdmin    = "admin"
)

// User represents a row of the `usuarios` table. Each field
// corresponds to a column in the database. The json tags are omitted
// here because these structs are primarily used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Nome         – display name.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – one of operador, gestor, admin.
//  UnidadeID    – home hospital unit (foreign key into unidades).
//  Ativo        – whether the account is active; inactive accounts are
//                 soft-deleted and can no longer authenticate.
//  UltimoLogin  – timestamp of the last successful login (null until
//                 the first one).
//  CriadoEm     – timestamp of creation.
//  AtualizadoEm – timestamp of last update.
type User struct {
    ID           uint64     // usuarios.id
    Nome         string     // usuarios.nome
    Email        string     // usuarios.email
    PasswordHash string     // usuarios.senha_hash
    Role         string     // usuarios.role
    UnidadeID    uint64     // usuarios.unidade_id
    Ativo        bool       // usuarios.ativo
    UltimoLogin  *time.Time // usuarios.ultimo_login (nullable)
    CriadoEm     time.Time  // usuarios.criado_em
    AtualizadoEm time.Time  // usuarios.atualizado_em
}
