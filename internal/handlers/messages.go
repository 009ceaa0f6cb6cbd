package handlers

// User-facing messages. Raw errors are only logged.
const (
	msgInvalidBody      = "Solicitud inválida"
	msgInvalidFields    = "Por favor corrige los campos marcados"
	msgNotFound         = "No encontrado"
	msgPropertyNotFound = "Propiedad no encontrada"
	msgVersionConflict  = "La propiedad fue modificada por otra persona. Recarga e intenta de nuevo."
	msgDuplicate        = "El registro ya existe"
	msgInvalidReference = "La referencia no existe"
	msgForbidden        = "No tienes permiso para realizar esta acción"
	msgSubmitInFlight   = "El formulario ya se está enviando"

	msgLoadProperties  = "Error al cargar las propiedades"
	msgLoadProperty    = "Error al cargar la propiedad. Por favor intenta de nuevo."
	msgCreateProperty  = "Error al crear la propiedad. Por favor intenta de nuevo."
	msgSaveProperty    = "Error al guardar la propiedad. Por favor intenta de nuevo."
	msgDeleteProperty  = "Error al eliminar la propiedad. Por favor intenta de nuevo."
	msgUpdateStatus    = "Error al actualizar el estado. Por favor intenta de nuevo."
	msgSendInquiry     = "Error al enviar el mensaje. Por favor intenta de nuevo más tarde."
	msgScheduleVisit   = "Error al programar la visita. Por favor intenta de nuevo más tarde."
	msgSendLead        = "Error al enviar tus datos. Por favor intenta de nuevo más tarde."
	msgToggleFavorite  = "Error al actualizar el favorito"
	msgCheckFavorite   = "Error al verificar el estado del favorito"
	msgLoadFavorites   = "Error al cargar los favoritos"
	msgRegister        = "Ocurrió un error durante el registro"
	msgLogin           = "Error al iniciar sesión. Por favor intenta de nuevo."
	msgEmailTaken      = "Este correo ya está registrado"
	msgRoleNotAllowed  = "No puedes registrarte con ese rol"
	msgBadCredentials  = "Correo o contraseña incorrectos"
	msgInactiveAccount = "Tu cuenta está desactivada"
	msgLoadData        = "Error al cargar los datos. Por favor, intenta de nuevo."
	msgLoadProfile     = "Error al cargar el perfil. Por favor, intenta de nuevo."
	msgUpdateProfile   = "Error al actualizar el perfil. Por favor, intenta de nuevo."
	msgProfileUpdated  = "Perfil actualizado correctamente."
	msgSaveUser        = "Error al guardar el usuario. Por favor intenta de nuevo."
	msgMediaDisabled   = "El almacenamiento de imágenes no está disponible"
	msgUploadImage     = "Error al subir la imagen. Por favor intenta de nuevo."
	msgImageOnly       = "Solo se permiten imágenes"
	msgSearch          = "Error al buscar propiedades"
)
